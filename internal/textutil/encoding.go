package textutil

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Supported asset encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingEUCJP    = "euc-jp"
)

// UTF8BOM is the byte order mark some Windows exporters prepend.
const UTF8BOM = "\uFEFF"

// Codec converts asset bytes to UTF-8 text and back.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// NewCodec returns the codec for an encoding name.
func NewCodec(name string) (*Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return &Codec{name: EncodingUTF8}, nil
	case EncodingShiftJIS, "sjis", "shift-jis", "cp932":
		return &Codec{name: EncodingShiftJIS, enc: japanese.ShiftJIS}, nil
	case EncodingEUCJP, "eucjp", "euc_jp":
		return &Codec{name: EncodingEUCJP, enc: japanese.EUCJP}, nil
	default:
		return nil, fmt.Errorf("unsupported asset encoding %q", name)
	}
}

// Name returns the canonical encoding name.
func (c *Codec) Name() string { return c.name }

// Decode converts raw file bytes into UTF-8 text.
func (c *Codec) Decode(raw []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("content is not valid UTF-8")
		}
		return string(raw), nil
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text back into the asset encoding.
func (c *Codec) Encode(text string) ([]byte, error) {
	if c.enc == nil {
		return []byte(text), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return out, nil
}
