package store

import (
	"fmt"

	"swf-translator/internal/parser"
)

// Phase is the last pipeline phase that completed against a store.
type Phase string

const (
	PhaseGathered   Phase = "gathered"
	PhaseTranslated Phase = "translated"
	PhaseExported   Phase = "exported"
)

func (p Phase) valid() bool {
	switch p {
	case PhaseGathered, PhaseTranslated, PhaseExported:
		return true
	}
	return false
}

// Settings records how the assets were parsed at gather time. Export re-parses
// with the same settings so extraction sequences line up.
type Settings struct {
	SourceLanguage   string `json:"source_language"`
	TargetLanguage   string `json:"target_language"`
	ActionScriptMode string `json:"actionscript_mode"`
	RecordSeparator  string `json:"record_separator"`
	Encoding         string `json:"encoding"`
}

// FileRecord describes one asset file seen by the last gather or export.
type FileRecord struct {
	Path    string      `json:"path"`
	Kind    parser.Kind `json:"kind"`
	SHA256  string      `json:"sha256"`
	Strings int         `json:"strings"`
}

// Entry is one unique source string and its translation, if any.
type Entry struct {
	ID          int     `json:"id"`
	Source      string  `json:"source"`
	Translation *string `json:"translation"`
}

// Translated reports whether the entry carries a translation.
func (e Entry) Translated() bool { return e.Translation != nil }

// Store is an insertion-ordered, deduplicated mapping from source strings to
// 1-based ids and optional translations. It is not safe for concurrent use.
type Store struct {
	Phase    Phase
	Settings Settings
	Files    []FileRecord

	entries []Entry
	index   map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts value if it is new and returns its id. Adding an existing value
// returns the id assigned when it was first seen.
func (s *Store) Add(value string) int {
	if id, ok := s.index[value]; ok {
		return id
	}
	id := len(s.entries) + 1
	s.entries = append(s.entries, Entry{ID: id, Source: value})
	s.index[value] = id
	return id
}

// Lookup returns the id of value.
func (s *Store) Lookup(value string) (int, bool) {
	id, ok := s.index[value]
	return id, ok
}

// Source returns the source string with the given id.
func (s *Store) Source(id int) (string, bool) {
	if !s.has(id) {
		return "", false
	}
	return s.entries[id-1].Source, true
}

// SetTranslation records the translation for id.
func (s *Store) SetTranslation(id int, value string) error {
	if !s.has(id) {
		return fmt.Errorf("unknown string id %d", id)
	}
	v := value
	s.entries[id-1].Translation = &v
	return nil
}

// ClearTranslation removes the translation for id.
func (s *Store) ClearTranslation(id int) error {
	if !s.has(id) {
		return fmt.Errorf("unknown string id %d", id)
	}
	s.entries[id-1].Translation = nil
	return nil
}

// Translation returns the translation for id, if one was set.
func (s *Store) Translation(id int) (string, bool) {
	if !s.has(id) || s.entries[id-1].Translation == nil {
		return "", false
	}
	return *s.entries[id-1].Translation, true
}

// Missing returns the ids of entries without a translation, in id order.
func (s *Store) Missing() []int {
	var ids []int
	for _, e := range s.entries {
		if e.Translation == nil {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Entries returns a copy of all entries in id order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{ID: e.ID, Source: e.Source}
		if e.Translation != nil {
			v := *e.Translation
			out[i].Translation = &v
		}
	}
	return out
}

// Len returns the number of unique source strings.
func (s *Store) Len() int { return len(s.entries) }

// File returns the record for the asset at path.
func (s *Store) File(path string) (FileRecord, bool) {
	for _, f := range s.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileRecord{}, false
}

func (s *Store) has(id int) bool {
	return id >= 1 && id <= len(s.entries)
}
