package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"swf-translator/internal/parser"
	"swf-translator/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Default asset directories written by a JPEXS export.
const (
	DefaultTextsDir   = "texts"
	DefaultScriptsDir = "scripts"
)

// Layout locates the exported asset directories.
type Layout struct {
	// Root is the export directory. TextsDir and ScriptsDir are relative to it.
	Root       string
	TextsDir   string
	ScriptsDir string
}

func (l Layout) withDefaults() Layout {
	if l.Root == "" {
		l.Root = "."
	}
	if l.TextsDir == "" {
		l.TextsDir = DefaultTextsDir
	}
	if l.ScriptsDir == "" {
		l.ScriptsDir = DefaultScriptsDir
	}
	return l
}

// Walker traverses the asset layout and dispatches files to the correct parser.
type Walker struct {
	text   parser.Parser
	script parser.Parser
	codec  *textutil.Codec
}

// NewWalker creates a Walker that reads text tags with text, scripts with
// script, and decodes both with codec.
func NewWalker(text, script parser.Parser, codec *textutil.Codec) *Walker {
	return &Walker{text: text, script: script, codec: codec}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	// Path is the location on disk.
	Path string
	// Rel is the slash-separated path relative to the layout root.
	Rel    string
	Ext    string
	Parser parser.Parser
}

// Asset is a parsed file together with the bytes it was read from.
type Asset struct {
	Entry  FileEntry
	Raw    []byte
	Result *parser.ParseResult
}

// Walk discovers all asset files, text tags first, each group in lexical order.
func (w *Walker) Walk(layout Layout) ([]FileEntry, error) {
	layout = layout.withDefaults()

	info, err := os.Stat(layout.Root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", layout.Root)
	}

	var entries []FileEntry
	for _, group := range []struct {
		dir    string
		parser parser.Parser
	}{
		{layout.TextsDir, w.text},
		{layout.ScriptsDir, w.script},
	} {
		found, err := w.walkDir(layout.Root, group.dir, group.parser)
		if err != nil {
			return nil, err
		}
		entries = append(entries, found...)
	}

	log.Info().Int("count", len(entries)).Str("root", layout.Root).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) walkDir(root, dir string, p parser.Parser) ([]FileEntry, error) {
	base := filepath.Join(root, dir)
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("dir", base).Msg("Asset directory not present")
		return nil, nil
	}

	var entries []FileEntry
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !p.CanParse(ext) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path:   path,
			Rel:    filepath.ToSlash(rel),
			Ext:    ext,
			Parser: p,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}
	return entries, nil
}

// Entry builds the FileEntry for a path relative to the layout root, as
// recorded in a string store.
func (w *Walker) Entry(layout Layout, rel string, kind parser.Kind) (FileEntry, error) {
	layout = layout.withDefaults()
	var p parser.Parser
	switch kind {
	case w.text.Kind():
		p = w.text
	case w.script.Kind():
		p = w.script
	default:
		return FileEntry{}, fmt.Errorf("%s: unsupported asset kind %q", rel, kind)
	}
	return FileEntry{
		Path:   filepath.Join(layout.Root, filepath.FromSlash(rel)),
		Rel:    rel,
		Ext:    strings.ToLower(filepath.Ext(rel)),
		Parser: p,
	}, nil
}

// ParseFile reads, decodes and parses a single file.
func (w *Walker) ParseFile(entry FileEntry) (*Asset, error) {
	raw, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Rel, err)
	}
	content, err := w.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", entry.Rel, err)
	}
	result, err := entry.Parser.Parse(entry.Rel, content)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", entry.Rel).Int("strings", len(result.Texts)).Msg("Parsed file")
	return &Asset{Entry: entry, Raw: raw, Result: result}, nil
}

// Render rebuilds the asset with translated strings and encodes it for disk.
func (w *Walker) Render(asset *Asset, translated []string) ([]byte, error) {
	content, err := asset.Entry.Parser.Reconstruct(asset.Result, translated)
	if err != nil {
		return nil, err
	}
	out, err := w.codec.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", asset.Entry.Rel, err)
	}
	return out, nil
}

// Checksum returns the hex SHA-256 of the asset bytes as read.
func (a *Asset) Checksum() string {
	return textutil.HashBytes(a.Raw)
}
