package translation

import (
	"context"
	"fmt"

	"swf-translator/internal/cache"

	"github.com/rs/zerolog/log"
)

type cachedBackend struct {
	backend Backend
	cache   *cache.TranslationCache
	refresh bool
}

// WithCache wraps b so that translations found in c are reused and only
// unseen strings, deduplicated, reach b. New results are written to c and
// flushed after each call.
func WithCache(b Backend, c *cache.TranslationCache) Backend {
	return &cachedBackend{backend: b, cache: c}
}

// WithCacheRefresh wraps b so that every string reaches b, ignoring entries
// already in c. Results still replace the entries in c.
func WithCacheRefresh(b Backend, c *cache.TranslationCache) Backend {
	return &cachedBackend{backend: b, cache: c, refresh: true}
}

func (cb *cachedBackend) Name() string { return cb.backend.Name() }

func (cb *cachedBackend) TranslateAll(ctx context.Context, sources []string) ([]string, error) {
	results := make([]string, len(sources))
	missIndex := make(map[string]int)
	var misses []string

	for i, s := range sources {
		if !cb.refresh {
			if v, ok := cb.cache.Get(s); ok {
				results[i] = v
				continue
			}
		}
		if _, seen := missIndex[s]; !seen {
			missIndex[s] = len(misses)
			misses = append(misses, s)
		}
	}

	log.Info().
		Str("namespace", cb.cache.Namespace()).
		Int("hits", len(sources)-countMisses(sources, missIndex)).
		Int("misses", len(misses)).
		Bool("refresh", cb.refresh).
		Msg("Translation cache lookup")

	if len(misses) > 0 {
		translated, err := cb.backend.TranslateAll(ctx, misses)
		if err != nil {
			return nil, err
		}
		if len(translated) != len(misses) {
			return nil, fmt.Errorf("%s returned %d translations for %d strings", cb.backend.Name(), len(translated), len(misses))
		}
		pairs := make(map[string]string, len(misses))
		for i, s := range misses {
			pairs[s] = translated[i]
		}
		cb.cache.SetBatch(pairs)
		for i, s := range sources {
			if j, ok := missIndex[s]; ok {
				results[i] = translated[j]
			}
		}
		if err := cb.cache.Flush(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to persist translation cache")
		}
	}

	return results, nil
}

func countMisses(sources []string, missIndex map[string]int) int {
	n := 0
	for _, s := range sources {
		if _, ok := missIndex[s]; ok {
			n++
		}
	}
	return n
}
