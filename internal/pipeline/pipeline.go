// Package pipeline drives the gather, translate and export phases over an
// exported SWF asset tree and its string store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"swf-translator/internal/filewalker"
	"swf-translator/internal/parser"
	"swf-translator/internal/store"
	"swf-translator/internal/textutil"
	"swf-translator/internal/worker"
)

// Workspace locates the asset tree and the string store.
type Workspace struct {
	Layout filewalker.Layout
	// StorePath is the translation unit file. Relative paths are resolved
	// against the layout root.
	StorePath string
	// Workers bounds concurrent file parsing.
	Workers int
}

func (w Workspace) storePath() string {
	p := w.StorePath
	if p == "" {
		p = store.DefaultFileName
	}
	if filepath.IsAbs(p) {
		return p
	}
	root := w.Layout.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, p)
}

// loadStore reads the workspace store, mapping a missing file to ErrNoStore.
func (w Workspace) loadStore() (*store.Store, error) {
	s, err := store.Load(w.storePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoStore
	}
	return s, err
}

// newWalker builds parsers from the settings recorded in a store.
func newWalker(settings store.Settings) (*filewalker.Walker, error) {
	codec, err := textutil.NewCodec(settings.Encoding)
	if err != nil {
		return nil, err
	}
	mode := parser.ModeHeuristic
	if settings.ActionScriptMode != "" {
		if mode, err = parser.ParseMode(settings.ActionScriptMode); err != nil {
			return nil, err
		}
	}
	script, err := parser.NewActionScriptParser(parser.DefaultRules(mode))
	if err != nil {
		return nil, err
	}
	return filewalker.NewWalker(parser.NewPlainTextParser(settings.RecordSeparator), script, codec), nil
}

// parseAll parses entries on a worker pool, returning assets in entry order.
func parseAll(ctx context.Context, w *filewalker.Walker, entries []filewalker.FileEntry, workers int) ([]*filewalker.Asset, error) {
	pool := worker.NewPool(workers, func(_ context.Context, e filewalker.FileEntry) (*filewalker.Asset, error) {
		return w.ParseFile(e)
	})
	assets, err := pool.Execute(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("parse assets: %w", err)
	}
	return assets, nil
}
