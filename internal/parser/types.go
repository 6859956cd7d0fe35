package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind identifies an asset export format.
type Kind string

const (
	// KindPlainText is a JPEXS "Plain Text" export of a text tag.
	KindPlainText Kind = "plain-text"
	// KindActionScript is a JPEXS "ActionScript" export of a script.
	KindActionScript Kind = "action-script"
)

// ExtractedText represents one translatable occurrence found in an asset file.
type ExtractedText struct {
	// Text is the canonical value with asset-specific escaping decoded.
	Text string
	// File is the source file path.
	File string
	// Line is the 1-based line number where the occurrence starts.
	Line int
	// Column is the 1-based rune column where the occurrence starts.
	Column int
	// Context holds additional context (literal kind, quote, callee, ...).
	Context map[string]string

	raw    string
	encode func(string) string
}

// segment is a contiguous piece of the file: verbatim bytes or one extracted text.
type segment struct {
	raw  string
	text int // index into ParseResult.Texts, -1 for verbatim content
}

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the path the content was read from.
	FilePath string
	// Kind is the asset format.
	Kind Kind
	// Texts are the extracted translatable strings in file order.
	Texts []ExtractedText

	segments []segment
}

// Strings returns the canonical values of all extracted texts in file order.
func (r *ParseResult) Strings() []string {
	out := make([]string, len(r.Texts))
	for i, t := range r.Texts {
		out[i] = t.Text
	}
	return out
}

// Content reassembles the original file content.
func (r *ParseResult) Content() string {
	var sb strings.Builder
	for _, seg := range r.segments {
		sb.WriteString(seg.raw)
	}
	return sb.String()
}

// reconstruct rebuilds the file with translated[i] substituted for Texts[i].
// A value equal to the extracted one is written back from its original bytes.
func (r *ParseResult) reconstruct(translated []string) (string, error) {
	if len(translated) != len(r.Texts) {
		return "", &LengthMismatchError{File: r.FilePath, Expected: len(r.Texts), Got: len(translated)}
	}

	var sb strings.Builder
	for _, seg := range r.segments {
		if seg.text < 0 {
			sb.WriteString(seg.raw)
			continue
		}
		et := r.Texts[seg.text]
		value := translated[seg.text]
		if value == et.Text {
			sb.WriteString(et.raw)
		} else {
			sb.WriteString(et.encode(value))
		}
	}
	return sb.String(), nil
}

// Parser is the interface for all asset format parsers.
type Parser interface {
	// Kind returns the asset format handled by this parser.
	Kind() Kind
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse extracts translatable strings from decoded file content.
	Parse(filePath, content string) (*ParseResult, error)
	// Reconstruct rebuilds the file with translated strings, one per extracted text.
	Reconstruct(result *ParseResult, translated []string) (string, error)
}

// LengthMismatchError reports a replacement sequence that does not line up with
// the extraction, usually a stale store or an asset modified outside the pipeline.
type LengthMismatchError struct {
	File     string
	Expected int
	Got      int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: string count mismatch: extracted %d, got %d replacements", e.File, e.Expected, e.Got)
}

// MalformedLiteralError reports a string literal whose delimiters are unbalanced.
type MalformedLiteralError struct {
	File   string
	Line   int
	Column int
	Reason string
}

func (e *MalformedLiteralError) Error() string {
	return fmt.Sprintf("%s:%d:%d: malformed string literal: %s", e.File, e.Line, e.Column, e.Reason)
}

// builder accumulates segments and texts while a parser walks the content.
type builder struct {
	result     *ParseResult
	content    string
	lineStarts []int
}

func newBuilder(filePath string, kind Kind, content string) *builder {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &builder{
		result:     &ParseResult{FilePath: filePath, Kind: kind},
		content:    content,
		lineStarts: starts,
	}
}

// position converts a byte offset into a 1-based line and rune column.
func (b *builder) position(offset int) (int, int) {
	line := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	col := utf8.RuneCountInString(b.content[b.lineStarts[line]:offset]) + 1
	return line + 1, col
}

// lineAt returns the full line containing offset, without its terminator.
func (b *builder) lineAt(offset int) string {
	line, _ := b.position(offset)
	start := b.lineStarts[line-1]
	end := len(b.content)
	if line < len(b.lineStarts) {
		end = b.lineStarts[line] - 1
	}
	return strings.TrimSuffix(b.content[start:end], "\r")
}

func (b *builder) verbatim(raw string) {
	if raw == "" {
		return
	}
	segs := b.result.segments
	if n := len(segs); n > 0 && segs[n-1].text < 0 {
		segs[n-1].raw += raw
		return
	}
	b.result.segments = append(segs, segment{raw: raw, text: -1})
}

func (b *builder) text(raw, value string, offset int, ctx map[string]string, encode func(string) string) {
	line, col := b.position(offset)
	b.result.Texts = append(b.result.Texts, ExtractedText{
		Text:    value,
		File:    b.result.FilePath,
		Line:    line,
		Column:  col,
		Context: ctx,
		raw:     raw,
		encode:  encode,
	})
	b.result.segments = append(b.result.segments, segment{raw: raw, text: len(b.result.Texts) - 1})
}
