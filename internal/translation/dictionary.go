package translation

import (
	_ "embed"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Dictionary maps NFKC-normalised Japanese terms to English.
type Dictionary struct {
	entries map[string]string
	maxLen  int // longest key, in runes
}

// DefaultDictionary returns the built-in glossary.
func DefaultDictionary() (*Dictionary, error) {
	d := &Dictionary{entries: make(map[string]string)}
	if err := d.merge(defaultDictionary); err != nil {
		return nil, fmt.Errorf("built-in dictionary: %w", err)
	}
	return d, nil
}

// LoadDictionary returns the built-in glossary with the YAML mapping at path
// merged over it. An empty path yields the built-in glossary.
func LoadDictionary(path string) (*Dictionary, error) {
	d, err := DefaultDictionary()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	before := d.Len()
	if err := d.merge(data); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("entries", d.Len()).Int("added", d.Len()-before).Msg("Loaded dictionary")
	return d, nil
}

func (d *Dictionary) merge(data []byte) error {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	for k, v := range raw {
		d.Add(k, v)
	}
	return nil
}

// Add inserts or replaces a term.
func (d *Dictionary) Add(term, translation string) {
	term = norm.NFKC.String(term)
	if term == "" {
		return
	}
	d.entries[term] = translation
	if n := utf8.RuneCountInString(term); n > d.maxLen {
		d.maxLen = n
	}
}

// Len returns the number of terms.
func (d *Dictionary) Len() int { return len(d.entries) }

// longestMatch returns the translation of the longest term starting at
// runes[i] and its length in runes, or 0 when nothing matches.
func (d *Dictionary) longestMatch(runes []rune, i int) (string, int) {
	n := d.maxLen
	if rest := len(runes) - i; rest < n {
		n = rest
	}
	for ; n > 0; n-- {
		if v, ok := d.entries[string(runes[i:i+n])]; ok {
			return v, n
		}
	}
	return "", 0
}
