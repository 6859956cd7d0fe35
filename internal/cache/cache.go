package cache

import (
	"context"
	"fmt"
	"sync"

	"swf-translator/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Entry is one cached source→translation pair.
type Entry struct {
	Source     string
	Translated string
}

// Persister loads and saves cached translations for a namespace.
type Persister interface {
	// Load returns every cached entry of namespace.
	Load(ctx context.Context, namespace string) ([]Entry, error)
	// Save inserts or replaces entries in namespace.
	Save(ctx context.Context, namespace string, entries []Entry) error
	// Count returns the number of entries persisted in namespace.
	Count(ctx context.Context, namespace string) (int64, error)
}

// TranslationCache is an in-memory translation memory keyed by source hash,
// persisted through a Persister. It is safe for concurrent use.
type TranslationCache struct {
	persister Persister
	namespace string

	mu     sync.RWMutex
	memory map[string]Entry // hash → entry
	dirty  map[string]struct{}
}

// NewTranslationCache creates a cache for namespace, typically the backend
// name and language pair, so translations from different engines never mix.
func NewTranslationCache(p Persister, namespace string) *TranslationCache {
	return &TranslationCache{
		persister: p,
		namespace: namespace,
		memory:    make(map[string]Entry),
		dirty:     make(map[string]struct{}),
	}
}

// Namespace returns the cache namespace.
func (c *TranslationCache) Namespace() string { return c.namespace }

// Preload loads all persisted translations into memory.
func (c *TranslationCache) Preload(ctx context.Context) error {
	entries, err := c.persister.Load(ctx, c.namespace)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		c.memory[textutil.Hash(e.Source)] = e
	}

	log.Info().Str("namespace", c.namespace).Int("count", len(entries)).Msg("Preloaded translation cache")
	return nil
}

// Get retrieves a cached translation.
func (c *TranslationCache) Get(sourceText string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.memory[textutil.Hash(sourceText)]
	if !ok || e.Source != sourceText {
		return "", false
	}
	return e.Translated, true
}

// Set stores a translation in memory. It is persisted by the next Flush.
func (c *TranslationCache) Set(sourceText, translated string) {
	hash := textutil.Hash(sourceText)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.memory[hash]; ok && e.Source == sourceText && e.Translated == translated {
		return
	}
	c.memory[hash] = Entry{Source: sourceText, Translated: translated}
	c.dirty[hash] = struct{}{}
}

// SetBatch stores multiple translations.
func (c *TranslationCache) SetBatch(pairs map[string]string) {
	for source, translated := range pairs {
		c.Set(source, translated)
	}
}

// Len returns the number of cached translations.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Flush persists translations set since the last flush.
func (c *TranslationCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.dirty) == 0 {
		c.mu.Unlock()
		return nil
	}
	entries := make([]Entry, 0, len(c.dirty))
	for hash := range c.dirty {
		entries = append(entries, c.memory[hash])
	}
	c.mu.Unlock()

	if err := c.persister.Save(ctx, c.namespace, entries); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}

	c.mu.Lock()
	for _, e := range entries {
		hash := textutil.Hash(e.Source)
		if cur, ok := c.memory[hash]; ok && cur == e {
			delete(c.dirty, hash)
		}
	}
	c.mu.Unlock()

	log.Debug().Str("namespace", c.namespace).Int("count", len(entries)).Msg("Flushed translation cache")
	return nil
}
