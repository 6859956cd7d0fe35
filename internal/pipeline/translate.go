package pipeline

import (
	"context"
	"fmt"
	"time"

	"swf-translator/internal/store"
	"swf-translator/internal/translation"

	"github.com/rs/zerolog/log"
)

// TranslateOptions configures the translate phase.
type TranslateOptions struct {
	Workspace
	// Retranslate sends every entry, replacing existing translations.
	Retranslate bool
}

// TranslateResult summarises a translate run.
type TranslateResult struct {
	Backend    string
	Sent       int
	Translated int
	Total      int
	Duration   time.Duration
}

// Translate fills in translations for store entries using backend. The store
// file is only rewritten when the backend succeeds for every string.
func Translate(ctx context.Context, backend translation.Backend, opts TranslateOptions) (*TranslateResult, error) {
	s, err := opts.loadStore()
	if err != nil {
		return nil, err
	}
	if s.Phase == store.PhaseExported {
		log.Warn().Msg("Store was already exported; new translations apply to the next export from fresh assets")
	}

	var ids []int
	if opts.Retranslate {
		for _, e := range s.Entries() {
			ids = append(ids, e.ID)
		}
	} else {
		ids = s.Missing()
	}

	result := &TranslateResult{Backend: backend.Name(), Sent: len(ids), Total: s.Len()}
	if len(ids) == 0 {
		log.Info().Int("total", s.Len()).Msg("Nothing to translate")
		result.Translated = s.Len()
		return result, nil
	}

	sources := make([]string, len(ids))
	for i, id := range ids {
		sources[i], _ = s.Source(id)
	}

	log.Info().Str("backend", backend.Name()).Int("strings", len(sources)).Msg("Translating")
	start := time.Now()
	translated, err := backend.TranslateAll(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("translate with %s: %w", backend.Name(), err)
	}
	if len(translated) != len(sources) {
		return nil, fmt.Errorf("translate with %s: expected %d translations, got %d", backend.Name(), len(sources), len(translated))
	}
	result.Duration = time.Since(start)

	for i, id := range ids {
		if err := s.SetTranslation(id, translated[i]); err != nil {
			return nil, err
		}
	}
	if s.Phase != store.PhaseExported {
		s.Phase = store.PhaseTranslated
	}
	if err := s.Save(opts.storePath()); err != nil {
		return nil, fmt.Errorf("save string store: %w", err)
	}
	result.Translated = s.Len() - len(s.Missing())

	log.Info().
		Str("backend", backend.Name()).
		Int("sent", result.Sent).
		Dur("duration", result.Duration).
		Msg("Translate complete")
	return result, nil
}
