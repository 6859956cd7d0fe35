package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swf-translator/internal/textutil"
)

type memoryPersister struct {
	loaded []Entry
	saved  []Entry
	err    error
}

func (m *memoryPersister) Load(context.Context, string) ([]Entry, error) {
	return m.loaded, m.err
}

func (m *memoryPersister) Save(_ context.Context, _ string, entries []Entry) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, entries...)
	return nil
}

func (m *memoryPersister) Count(context.Context, string) (int64, error) {
	return int64(len(m.loaded) + len(m.saved)), m.err
}

func TestTranslationCacheGetSetFlush(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{loaded: []Entry{{Source: "世界", Translated: "world"}}}
	c := NewTranslationCache(p, "offline-ja-en")
	require.NoError(t, c.Preload(ctx))

	got, ok := c.Get("世界")
	require.True(t, ok)
	assert.Equal(t, "world", got)
	_, ok = c.Get("unknown")
	assert.False(t, ok)

	c.Set("世界", "world")
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, p.saved, "unchanged entries are not persisted again")

	c.SetBatch(map[string]string{"こんにちは": "hello", "猫": "cat"})
	assert.Equal(t, 3, c.Len())
	require.NoError(t, c.Flush(ctx))
	assert.ElementsMatch(t, []Entry{{"こんにちは", "hello"}, {"猫", "cat"}}, p.saved)

	p.saved = nil
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, p.saved)
}

func TestTranslationCacheFlushErrorKeepsDirty(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	c := NewTranslationCache(p, "ns")
	c.Set("a", "A")

	p.err = errors.New("disk full")
	require.Error(t, c.Flush(ctx))

	p.err = nil
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, []Entry{{"a", "A"}}, p.saved)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(t.TempDir())

	entries, err := fs.Load(ctx, "azure-ja-en")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, fs.Save(ctx, "azure-ja-en", []Entry{{"b", "B"}, {"<a>", "<A>"}}))
	require.NoError(t, fs.Save(ctx, "azure-ja-en", []Entry{{"b", "B2"}, {"c", "C"}}))

	entries, err = fs.Load(ctx, "azure-ja-en")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entry{{"<a>", "<A>"}, {"b", "B2"}, {"c", "C"}}, entries)

	data, err := os.ReadFile(fs.Path("azure-ja-en"))
	require.NoError(t, err)
	var doc map[string][]map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]string{"orig": "<a>", "tran": "<A>"}, doc["strings"][0])

	other, err := fs.Load(ctx, "offline-ja-en")
	require.NoError(t, err)
	assert.Empty(t, other)

	n, err := fs.Count(ctx, "azure-ja-en")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFileStorePathIsSanitized(t *testing.T) {
	fs := NewFileStore("/tmp/c")
	assert.Equal(t, "/tmp/c/swf-translator-cache-a_b_c.json", fs.Path("a/b c"))
}

// fakeDB records statements and serves canned rows.
type fakeDB struct {
	execs [][]any
	rows  [][]any
	row   []any
	err   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, append([]any{sql}, args...))
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows, i: -1}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return fakeRow{values: f.row}
}

type fakeRows struct {
	pgx.Rows
	rows [][]any
	i    int
}

func (r *fakeRows) Next() bool {
	r.i++
	return r.i < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.rows[r.i], dest)
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.values == nil {
		return pgx.ErrNoRows
	}
	return scanInto(r.values, dest)
}

func scanInto(values []any, dest []any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = values[i].(string)
		case *int64:
			*p = values[i].(int64)
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{
		rows: [][]any{{textutil.Hash("猫"), "猫", "cat"}},
	}
	ps := NewPostgresStore(db)

	require.NoError(t, ps.Migrate(ctx))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0][0].(string), "CREATE TABLE IF NOT EXISTS translation_cache"))

	entries, err := ps.Load(ctx, "azure-ja-en")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"猫", "cat"}}, entries)

	require.NoError(t, ps.Save(ctx, "azure-ja-en", []Entry{{"犬", "dog"}}))
	require.Len(t, db.execs, 2)
	assert.Equal(t, []any{"azure-ja-en", textutil.Hash("犬"), "犬", "dog"}, db.execs[1][1:])

	db.row = []any{int64(7)}
	n, err := ps.Count(ctx, "azure-ja-en")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	db.row = nil
	_, err = ps.Count(ctx, "azure-ja-en")
	assert.ErrorContains(t, err, "count cached translations")
}

func TestPostgresStoreErrors(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{err: errors.New("connection refused")}
	ps := NewPostgresStore(db)

	_, err := ps.Load(ctx, "ns")
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, ps.Save(ctx, "ns", []Entry{{"a", "A"}}))
	assert.Error(t, ps.Migrate(ctx))
}

func TestCacheOverPostgres(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{rows: [][]any{{textutil.Hash("猫"), "猫", "cat"}}}
	c := NewTranslationCache(NewPostgresStore(db), "azure-ja-en")
	require.NoError(t, c.Preload(ctx))

	got, ok := c.Get("猫")
	require.True(t, ok)
	assert.Equal(t, "cat", got)

	c.Set("犬", "dog")
	require.NoError(t, c.Flush(ctx))
	require.Len(t, db.execs, 1)
}
