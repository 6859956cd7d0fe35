package translation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swf-translator/internal/cache"
)

type recordingBackend struct {
	calls [][]string
	err   error
}

func (r *recordingBackend) Name() string { return "recording" }

func (r *recordingBackend) TranslateAll(_ context.Context, sources []string) ([]string, error) {
	r.calls = append(r.calls, append([]string(nil), sources...))
	if r.err != nil {
		return nil, r.err
	}
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = strings.ToUpper(s)
	}
	return out, nil
}

func TestWithCacheSendsOnlyMisses(t *testing.T) {
	ctx := context.Background()
	fs := cache.NewFileStore(t.TempDir())
	tc := cache.NewTranslationCache(fs, "recording-ja-en")
	tc.Set("b", "cached b")

	inner := &recordingBackend{}
	b := WithCache(inner, tc)
	assert.Equal(t, "recording", b.Name())

	out, err := b.TranslateAll(ctx, []string{"a", "b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "cached b", "C", "A"}, out)
	assert.Equal(t, [][]string{{"a", "c"}}, inner.calls)

	out, err = b.TranslateAll(ctx, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, out)
	assert.Len(t, inner.calls, 1, "second call is served from the cache")

	persisted, err := fs.Load(ctx, "recording-ja-en")
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

func TestWithCacheRefreshSendsEverything(t *testing.T) {
	ctx := context.Background()
	fs := cache.NewFileStore(t.TempDir())
	tc := cache.NewTranslationCache(fs, "recording-ja-en")
	tc.Set("a", "stale a")

	inner := &recordingBackend{}
	out, err := WithCacheRefresh(inner, tc).TranslateAll(ctx, []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, out)
	assert.Equal(t, [][]string{{"a", "b"}}, inner.calls)

	got, ok := tc.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got, "refreshed result replaces the cached one")

	out, err = WithCache(inner, tc).TranslateAll(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out)
	assert.Len(t, inner.calls, 1)
}

func TestWithCachePropagatesErrors(t *testing.T) {
	tc := cache.NewTranslationCache(cache.NewFileStore(t.TempDir()), "ns")
	inner := &recordingBackend{err: errors.New("offline")}
	out, err := WithCache(inner, tc).TranslateAll(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, tc.Len())
}
