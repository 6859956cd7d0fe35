package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextStructuralSeparator(t *testing.T) {
	p := NewPlainTextParser("---")
	res, err := p.Parse("t.txt", "Hello\n---\nWorld")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "World"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"Bonjour", "Monde"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour\n---\nMonde", out)
}

func TestPlainTextJPEXSRecords(t *testing.T) {
	p := NewPlainTextParser("")
	assert.Equal(t, DefaultRecordSeparator, p.Separator())

	input := "いち\n--- RECORDSEPARATOR ---\nに\n--- RECORDSEPARATOR ---\n\tさん"
	res, err := p.Parse("t.txt", input)
	require.NoError(t, err)
	assert.Equal(t, []string{"いち", "に", "\tさん"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"one", "two", "three"})
	require.NoError(t, err)
	assert.Equal(t, "one\n--- RECORDSEPARATOR ---\ntwo\n--- RECORDSEPARATOR ---\nthree", out)
}

func TestPlainTextMultilineRecordAndPositions(t *testing.T) {
	p := NewPlainTextParser("")
	input := "first line\nsecond line\n--- RECORDSEPARATOR ---\nlast"
	res, err := p.Parse("t.txt", input)
	require.NoError(t, err)
	require.Len(t, res.Texts, 2)
	assert.Equal(t, "first line\nsecond line", res.Texts[0].Text)
	assert.Equal(t, 1, res.Texts[0].Line)
	assert.Equal(t, 4, res.Texts[1].Line)
	assert.Equal(t, "2", res.Texts[1].Context["record"])
}

func TestPlainTextBlankRecordsAreSkipped(t *testing.T) {
	p := NewPlainTextParser("")
	input := "a\n--- RECORDSEPARATOR ---\n   \n--- RECORDSEPARATOR ---\n--- RECORDSEPARATOR ---\nb"
	res, err := p.Parse("t.txt", input)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, "A\n--- RECORDSEPARATOR ---\n   \n--- RECORDSEPARATOR ---\n--- RECORDSEPARATOR ---\nB", out)
}

func TestPlainTextEmptyFile(t *testing.T) {
	p := NewPlainTextParser("")
	res, err := p.Parse("t.txt", "")
	require.NoError(t, err)
	assert.Empty(t, res.Strings())

	out, err := p.Reconstruct(res, nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPlainTextCRLFAndBOM(t *testing.T) {
	p := NewPlainTextParser("")
	input := "\uFEFFline one\r\nline two\r\n--- RECORDSEPARATOR ---\r\nlast\r\n"
	res, err := p.Parse("t.txt", input)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one\nline two", "last"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"uno\ndos", "fin"})
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFuno\r\ndos\r\n--- RECORDSEPARATOR ---\r\nfin\r\n", out)
}

func TestPlainTextIdentityRoundTrip(t *testing.T) {
	p := NewPlainTextParser("")
	inputs := []string{
		"",
		"\n",
		"single",
		"trailing newline\n",
		"a\r\n--- RECORDSEPARATOR ---\r\nb\r\n\r\n",
		"--- RECORDSEPARATOR ---\nleading separator",
		"x\n--- RECORDSEPARATOR ---\n",
		"\uFEFF日本語\n--- RECORDSEPARATOR ---\n\n\n二行目\n",
	}
	for _, input := range inputs {
		res, err := p.Parse("t.txt", input)
		require.NoError(t, err)
		assert.Equal(t, input, res.Content())

		out, err := p.Reconstruct(res, res.Strings())
		require.NoError(t, err)
		if diff := cmp.Diff(input, out); diff != "" {
			t.Errorf("identity replace changed %q (-want +got):\n%s", input, diff)
		}
	}
}

func TestPlainTextLengthMismatch(t *testing.T) {
	p := NewPlainTextParser("---")
	res, err := p.Parse("t.txt", "Hello\n---\nWorld")
	require.NoError(t, err)

	_, err = p.Reconstruct(res, []string{"only one"})
	var lm *LengthMismatchError
	require.True(t, errors.As(err, &lm))
	assert.Equal(t, 2, lm.Expected)
	assert.Equal(t, 1, lm.Got)
	assert.Equal(t, "t.txt", lm.File)
}

func TestPlainTextCanParse(t *testing.T) {
	p := NewPlainTextParser("")
	assert.True(t, p.CanParse(".txt"))
	assert.False(t, p.CanParse(".as"))
	assert.Equal(t, KindPlainText, p.Kind())
}
