package pipeline

import (
	"context"
	"errors"
	"fmt"

	"swf-translator/internal/store"

	"github.com/rs/zerolog/log"
)

// GatherOptions configures the gather phase.
type GatherOptions struct {
	Workspace
	// Settings selects how assets are parsed. They are recorded in the store.
	Settings store.Settings
	// Force gathers even when the existing store was already exported, and
	// replaces an unreadable store.
	Force bool
}

// GatherResult summarises a gather run.
type GatherResult struct {
	Files       int
	Occurrences int
	Unique      int
	CarriedOver int
	StorePath   string
}

// Gather extracts every translatable string from the asset tree into a fresh
// store, keeping translations from an existing store for sources still present.
func Gather(ctx context.Context, opts GatherOptions) (*GatherResult, error) {
	path := opts.storePath()

	previous, err := opts.loadStore()
	switch {
	case errors.Is(err, ErrNoStore):
		previous = nil
	case err != nil && opts.Force:
		log.Warn().Err(err).Str("path", path).Msg("Replacing unreadable string store")
		previous = nil
	case err != nil:
		return nil, err
	case previous.Phase == store.PhaseExported && !opts.Force:
		return nil, &PhaseError{Op: "gather", Phase: previous.Phase}
	}

	walker, err := newWalker(opts.Settings)
	if err != nil {
		return nil, err
	}
	entries, err := walker.Walk(opts.Layout)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		log.Warn().Str("root", opts.Layout.Root).Msg("No asset files found")
	}
	assets, err := parseAll(ctx, walker, entries, opts.Workers)
	if err != nil {
		return nil, err
	}

	s := store.New()
	s.Phase = store.PhaseGathered
	s.Settings = opts.Settings
	s.Files = make([]store.FileRecord, 0, len(assets))

	result := &GatherResult{Files: len(assets), StorePath: path}
	for _, a := range assets {
		for _, t := range a.Result.Texts {
			s.Add(t.Text)
		}
		result.Occurrences += len(a.Result.Texts)
		s.Files = append(s.Files, store.FileRecord{
			Path:    a.Entry.Rel,
			Kind:    a.Result.Kind,
			SHA256:  a.Checksum(),
			Strings: len(a.Result.Texts),
		})
		log.Debug().Str("file", a.Entry.Rel).Int("strings", len(a.Result.Texts)).Msg("Gathered file")
	}
	result.Unique = s.Len()

	if previous != nil {
		for _, e := range s.Entries() {
			oldID, ok := previous.Lookup(e.Source)
			if !ok {
				continue
			}
			if tr, ok := previous.Translation(oldID); ok {
				if err := s.SetTranslation(e.ID, tr); err != nil {
					return nil, err
				}
				result.CarriedOver++
			}
		}
	}

	if err := s.Save(path); err != nil {
		return nil, fmt.Errorf("save string store: %w", err)
	}

	log.Info().
		Int("files", result.Files).
		Int("occurrences", result.Occurrences).
		Int("unique", result.Unique).
		Int("carried_over", result.CarriedOver).
		Str("store", path).
		Msg("Gather complete")
	return result, nil
}
