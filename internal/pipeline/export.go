package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"swf-translator/internal/atomicfile"
	"swf-translator/internal/filewalker"
	"swf-translator/internal/store"
	"swf-translator/internal/textutil"

	"github.com/rs/zerolog/log"
)

// ExportOptions configures the export phase.
type ExportOptions struct {
	Workspace
	// FallbackToSource writes untranslated strings back unchanged instead of
	// failing with IncompleteTranslationError.
	FallbackToSource bool
	// Force exports over modified assets and over a store already exported.
	Force bool
}

// PlannedFile is one asset rendered in memory, waiting to be written.
type PlannedFile struct {
	Rel     string
	Path    string
	Data    []byte
	Changed bool
}

// ExportPlan holds every rendered asset and the updated store. Nothing is
// written until Commit.
type ExportPlan struct {
	Files        []PlannedFile
	Untranslated []int
	storePath    string
	store        *store.Store
}

// Changed returns the number of assets whose bytes differ from disk.
func (p *ExportPlan) Changed() int {
	n := 0
	for _, f := range p.Files {
		if f.Changed {
			n++
		}
	}
	return n
}

// Export renders every asset with its translations and writes the result.
func Export(ctx context.Context, opts ExportOptions) (*ExportPlan, error) {
	plan, err := PlanExport(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := plan.Commit(); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanExport validates the store against the asset tree and renders every
// asset in memory.
func PlanExport(ctx context.Context, opts ExportOptions) (*ExportPlan, error) {
	s, err := opts.loadStore()
	if err != nil {
		return nil, err
	}
	if s.Phase == store.PhaseExported && !opts.Force {
		return nil, &PhaseError{Op: "export", Phase: s.Phase}
	}

	missing := s.Missing()
	if len(missing) > 0 && !opts.FallbackToSource {
		return nil, &IncompleteTranslationError{IDs: missing}
	}
	for _, id := range missing {
		src, _ := s.Source(id)
		log.Warn().Int("id", id).Str("source", textutil.Truncate(src, 40)).Msg("No translation, keeping source text")
	}

	walker, err := newWalker(s.Settings)
	if err != nil {
		return nil, err
	}

	stale := &StaleAssetError{}
	var entries []filewalker.FileEntry
	var records []store.FileRecord
	for _, rec := range s.Files {
		entry, err := walker.Entry(opts.Layout, rec.Path, rec.Kind)
		if err != nil {
			return nil, err
		}
		_, err = os.Stat(entry.Path)
		if errors.Is(err, fs.ErrNotExist) {
			stale.Missing = append(stale.Missing, rec.Path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rec.Path, err)
		}
		entries = append(entries, entry)
		records = append(records, rec)
	}

	current, err := walker.Walk(opts.Layout)
	if err != nil {
		return nil, err
	}
	for _, e := range current {
		if _, ok := s.File(e.Rel); !ok {
			stale.Added = append(stale.Added, e.Rel)
		}
	}

	assets, err := parseAll(ctx, walker, entries, opts.Workers)
	if err != nil {
		return nil, err
	}
	for i, a := range assets {
		if a.Checksum() != records[i].SHA256 {
			stale.Changed = append(stale.Changed, a.Entry.Rel)
		}
	}
	if !stale.empty() {
		if !opts.Force {
			return nil, stale
		}
		log.Warn().Err(stale).Msg("Exporting over modified assets")
	}

	plan := &ExportPlan{Untranslated: missing, storePath: opts.storePath(), store: s}
	updated := make([]store.FileRecord, 0, len(assets))
	for i, a := range assets {
		translated := make([]string, len(a.Result.Texts))
		for j, t := range a.Result.Texts {
			translated[j] = t.Text
			id, ok := s.Lookup(t.Text)
			if !ok {
				log.Warn().Str("file", a.Entry.Rel).Int("line", t.Line).Msg("String not in store, keeping source text")
				continue
			}
			if tr, ok := s.Translation(id); ok {
				translated[j] = tr
			}
		}
		data, err := walker.Render(a, translated)
		if err != nil {
			return nil, err
		}
		plan.Files = append(plan.Files, PlannedFile{
			Rel:     a.Entry.Rel,
			Path:    a.Entry.Path,
			Data:    data,
			Changed: !bytes.Equal(data, a.Raw),
		})
		rec := records[i]
		rec.SHA256 = textutil.HashBytes(data)
		rec.Strings = len(a.Result.Texts)
		updated = append(updated, rec)
	}
	s.Files = updated
	s.Phase = store.PhaseExported
	return plan, nil
}

// Commit stages every changed asset and the updated store to temporary files,
// then renames them into place. A failure while staging leaves the tree untouched.
func (p *ExportPlan) Commit() error {
	var batch atomicfile.Batch
	for _, f := range p.Files {
		if !f.Changed {
			continue
		}
		if err := batch.Add(f.Path, f.Data, 0o644); err != nil {
			batch.Abort()
			return fmt.Errorf("stage %s: %w", f.Rel, err)
		}
	}
	data, err := p.store.Serialize()
	if err != nil {
		batch.Abort()
		return err
	}
	if err := batch.Add(p.storePath, data, 0o644); err != nil {
		batch.Abort()
		return fmt.Errorf("stage string store: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}

	log.Info().
		Int("files", len(p.Files)).
		Int("changed", p.Changed()).
		Int("untranslated", len(p.Untranslated)).
		Msg("Export complete")
	return nil
}
