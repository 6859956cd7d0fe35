package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"swf-translator/internal/atomicfile"
)

// Version is the translation unit file format version.
const Version = 1

// DefaultFileName is the translation unit file written next to the asset directories.
const DefaultFileName = "swf-translator-strings.json"

// CorruptStoreError reports a translation unit file that cannot be loaded.
type CorruptStoreError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptStoreError) Error() string {
	msg := "corrupt string store"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

type document struct {
	Version  int          `json:"version"`
	Phase    Phase        `json:"phase"`
	Settings Settings     `json:"settings"`
	Files    []FileRecord `json:"files"`
	Strings  []Entry      `json:"strings"`
}

// Serialize encodes the store as an indented translation unit document.
func (s *Store) Serialize() ([]byte, error) {
	doc := document{
		Version:  Version,
		Phase:    s.Phase,
		Settings: s.Settings,
		Files:    s.Files,
		Strings:  s.entries,
	}
	if doc.Files == nil {
		doc.Files = []FileRecord{}
	}
	if doc.Strings == nil {
		doc.Strings = []Entry{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode string store: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a translation unit document.
func Deserialize(data []byte) (*Store, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptStoreError{Reason: "invalid JSON", Err: err}
	}
	if doc.Version != Version {
		return nil, &CorruptStoreError{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	if !doc.Phase.valid() {
		return nil, &CorruptStoreError{Reason: fmt.Sprintf("unknown phase %q", doc.Phase)}
	}

	s := New()
	s.Phase = doc.Phase
	s.Settings = doc.Settings
	s.Files = doc.Files
	for i, e := range doc.Strings {
		if e.ID != i+1 {
			return nil, &CorruptStoreError{Reason: fmt.Sprintf("string %d has id %d, ids must be contiguous from 1", i+1, e.ID)}
		}
		if other, dup := s.index[e.Source]; dup {
			return nil, &CorruptStoreError{Reason: fmt.Sprintf("string %d duplicates the source of string %d", e.ID, other)}
		}
		s.entries = append(s.entries, e)
		s.index[e.Source] = e.ID
	}
	return s, nil
}

// Load reads the translation unit file at path. A missing file yields an
// error matching os.ErrNotExist.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read string store: %w", err)
	}
	s, err := Deserialize(data)
	if err != nil {
		var corrupt *CorruptStoreError
		if errors.As(err, &corrupt) {
			corrupt.Path = path
		}
		return nil, err
	}
	return s, nil
}

// Save atomically writes the store to path.
func (s *Store) Save(path string) error {
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write string store: %w", err)
	}
	return nil
}
