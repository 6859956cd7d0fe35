package parser

import (
	"strconv"
	"strings"

	"swf-translator/internal/textutil"
)

// DefaultRecordSeparator is the line JPEXS writes between records of a plain text export.
const DefaultRecordSeparator = "--- RECORDSEPARATOR ---"

// PlainTextParser handles text tags exported by JPEXS in "Plain Text" format.
//
// The file is a sequence of records separated by lines equal to the record
// separator. Every record that is not blank is one translatable string; a record
// may span several lines. Separator lines and blank records are kept verbatim.
type PlainTextParser struct {
	separator string
}

// NewPlainTextParser creates a parser for the given record separator line.
// An empty separator selects DefaultRecordSeparator.
func NewPlainTextParser(separator string) *PlainTextParser {
	if separator == "" {
		separator = DefaultRecordSeparator
	}
	return &PlainTextParser{separator: separator}
}

// Separator returns the record separator line.
func (p *PlainTextParser) Separator() string { return p.separator }

func (p *PlainTextParser) Kind() Kind { return KindPlainText }

func (p *PlainTextParser) CanParse(ext string) bool {
	return ext == ".txt"
}

func (p *PlainTextParser) Parse(filePath, content string) (*ParseResult, error) {
	b := newBuilder(filePath, KindPlainText, content)

	offset := 0
	if strings.HasPrefix(content, textutil.UTF8BOM) {
		b.verbatim(textutil.UTF8BOM)
		offset = len(textutil.UTF8BOM)
	}

	body := content[offset:]
	tail := ""
	switch {
	case strings.HasSuffix(body, "\r\n"):
		tail = "\r\n"
	case strings.HasSuffix(body, "\n"):
		tail = "\n"
	}
	body = body[:len(body)-len(tail)]

	lines := strings.Split(body, "\n")
	record := 0
	for i := 0; i < len(lines); {
		if p.isSeparator(lines[i]) {
			b.verbatim(lines[i])
			offset += len(lines[i])
			if i < len(lines)-1 {
				b.verbatim("\n")
				offset++
			}
			i++
			continue
		}

		// Group consecutive non-separator lines into one record.
		j := i
		for j < len(lines) && !p.isSeparator(lines[j]) {
			j++
		}
		raw := strings.Join(lines[i:j], "\n")
		value := decodeRecord(raw)
		if textutil.IsBlank(value) {
			b.verbatim(raw)
		} else {
			record++
			ctx := map[string]string{"record": strconv.Itoa(record)}
			b.text(raw, value, offset, ctx, recordEncoder(raw))
		}
		offset += len(raw)
		if j < len(lines) {
			b.verbatim("\n")
			offset++
		}
		i = j
	}

	b.verbatim(tail)
	return b.result, nil
}

func (p *PlainTextParser) Reconstruct(result *ParseResult, translated []string) (string, error) {
	return result.reconstruct(translated)
}

func (p *PlainTextParser) isSeparator(line string) bool {
	return strings.TrimSuffix(line, "\r") == p.separator
}

// decodeRecord normalizes CRLF line breaks inside a record to LF.
func decodeRecord(raw string) string {
	return strings.TrimSuffix(strings.ReplaceAll(raw, "\r\n", "\n"), "\r")
}

// recordEncoder re-applies the line break style of the original record.
func recordEncoder(raw string) func(string) string {
	trailingCR := strings.HasSuffix(raw, "\r")
	crlf := trailingCR || strings.Contains(raw, "\r\n")
	return func(value string) string {
		value = strings.ReplaceAll(value, "\r\n", "\n")
		if !crlf {
			return value
		}
		value = strings.ReplaceAll(value, "\n", "\r\n")
		if trailingCR {
			value += "\r"
		}
		return value
	}
}
