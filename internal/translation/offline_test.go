package translation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOffline(t *testing.T) *OfflineTranslator {
	t.Helper()
	dict, err := DefaultDictionary()
	require.NoError(t, err)
	return NewOfflineTranslator(dict, nil)
}

func TestOfflineTranslate(t *testing.T) {
	o := newOffline(t)
	cases := map[string]string{
		"こんにちは世界":     "hello world",
		"こんにちは、世界。":   "hello, world.",
		"スタートボタン":     "start BOTAN",
		"「はい」":        `"yes"`,
		"こんにちは「世界」":   `hello "world"`,
		"ちょっと":        "CHOTTO",
		"ｶﾞｰﾃﾞﾝ":      "GAADEN",
		"マッチ":         "MATCHI",
		"Lv.5 レベル":    "Lv.5 level",
		"レベル10":       "level 10",
		"ＡＢＣこんにちは！":   "ABC hello!",
		"plain ascii": "plain ascii",
		"":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, o.Translate(in), "translate %q", in)
	}
}

func TestOfflineTranslateAll(t *testing.T) {
	var progress [][2]int
	dict, err := DefaultDictionary()
	require.NoError(t, err)
	o := NewOfflineTranslator(dict, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	assert.Equal(t, "offline", o.Name())

	out, err := o.TranslateAll(context.Background(), []string{"世界", "はい"})
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "yes"}, out)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	empty, err := o.TranslateAll(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOfflineRejectsInvalidUTF8(t *testing.T) {
	o := newOffline(t)
	_, err := o.TranslateAll(context.Background(), []string{"ok", "\xff\xfe"})
	require.ErrorContains(t, err, "string 2")
}

func TestOfflineHonoursCancellation(t *testing.T) {
	o := newOffline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.TranslateAll(ctx, []string{"世界"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadDictionaryMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte("世界: the world\nボタン: button\n"), 0o644))

	dict, err := LoadDictionary(path)
	require.NoError(t, err)
	base, err := DefaultDictionary()
	require.NoError(t, err)
	assert.Equal(t, base.Len()+1, dict.Len())

	o := NewOfflineTranslator(dict, nil)
	assert.Equal(t, "hello the world", o.Translate("こんにちは世界"))
	assert.Equal(t, "start button", o.Translate("スタートボタン"))

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644))
	_, err = LoadDictionary(path)
	require.Error(t, err)
}

func TestRomanize(t *testing.T) {
	cases := map[string]string{
		"きょう":  "KYOU",
		"がっこう": "GAKKOU",
		"コーヒー": "KOOHII",
		"しんぶん": "SHINBUN",
		"ファイル": "FAIRU",
	}
	for in, want := range cases {
		assert.Equal(t, want, romanize([]rune(in)), "romanize %q", in)
	}
}
