package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"swf-translator/internal/atomicfile"
)

// FileStore persists each namespace as a JSON parallel corpus
// ({"strings": [{"orig": ..., "tran": ...}]}) in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed persister rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

type corpusFile struct {
	Strings []corpusPair `json:"strings"`
}

type corpusPair struct {
	Orig string `json:"orig"`
	Tran string `json:"tran"`
}

// Path returns the cache file used for namespace.
func (fs *FileStore) Path(namespace string) string {
	return filepath.Join(fs.dir, "swf-translator-cache-"+sanitizeNamespace(namespace)+".json")
}

func (fs *FileStore) Load(_ context.Context, namespace string) ([]Entry, error) {
	path := fs.Path(namespace)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var doc corpusFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(doc.Strings))
	for _, p := range doc.Strings {
		entries = append(entries, Entry{Source: p.Orig, Translated: p.Tran})
	}
	return entries, nil
}

func (fs *FileStore) Count(ctx context.Context, namespace string) (int64, error) {
	entries, err := fs.Load(ctx, namespace)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

// Save merges entries into the namespace file and rewrites it atomically.
func (fs *FileStore) Save(ctx context.Context, namespace string, entries []Entry) error {
	existing, err := fs.Load(ctx, namespace)
	if err != nil {
		return err
	}

	merged := make(map[string]string, len(existing)+len(entries))
	for _, e := range existing {
		merged[e.Source] = e.Translated
	}
	for _, e := range entries {
		merged[e.Source] = e.Translated
	}

	doc := corpusFile{Strings: make([]corpusPair, 0, len(merged))}
	for orig, tran := range merged {
		doc.Strings = append(doc.Strings, corpusPair{Orig: orig, Tran: tran})
	}
	sort.Slice(doc.Strings, func(i, j int) bool { return doc.Strings[i].Orig < doc.Strings[j].Orig })

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return atomicfile.WriteFile(fs.Path(namespace), buf.Bytes(), 0o644)
}

func sanitizeNamespace(ns string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, ns)
}
