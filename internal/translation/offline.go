package translation

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// OfflineTranslator produces a rough gloss without network access: known
// terms come from a dictionary, remaining kana is romanised, and everything
// else passes through. It is meant for smoke-testing a pipeline end to end.
type OfflineTranslator struct {
	dict     *Dictionary
	progress ProgressFunc
}

// NewOfflineTranslator creates a translator over dict.
func NewOfflineTranslator(dict *Dictionary, progress ProgressFunc) *OfflineTranslator {
	return &OfflineTranslator{dict: dict, progress: progress}
}

func (o *OfflineTranslator) Name() string { return "offline" }

func (o *OfflineTranslator) TranslateAll(ctx context.Context, sources []string) ([]string, error) {
	out := make([]string, len(sources))
	for i, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("string %d is not valid UTF-8", i+1)
		}
		out[i] = o.Translate(s)
		o.progress.report(i+1, len(sources))
	}
	return out, nil
}

// Japanese punctuation left over after NFKC normalisation.
var punctuation = map[rune]string{
	'、': ",", '。': ".", '，': ",", '．': ".",
	'「': `"`, '」': `"`, '『': `"`, '』': `"`,
	'【': "[", '】': "]", '〈': "<", '〉': ">", '《': "<", '》': ">",
	'・': " ", '〜': "~", '　': " ",
}

// opening punctuation is not followed by a space.
var opening = map[rune]bool{'「': true, '『': true, '【': true, '〈': true, '《': true, '(': true, '[': true}

type glossWriter struct {
	sb     strings.Builder
	gloss  bool // last token was a dictionary or romaji word
	spaced bool // a word written now needs a leading space
}

func (g *glossWriter) word(s string) {
	if g.spaced {
		g.sb.WriteByte(' ')
	}
	g.sb.WriteString(s)
	g.gloss = true
	g.spaced = true
}

func (g *glossWriter) punct(r rune, s string) {
	if opening[r] && g.spaced {
		g.sb.WriteByte(' ')
	}
	g.sb.WriteString(s)
	g.gloss = false
	g.spaced = !opening[r] && s != " "
}

// raw copies a rune from the source, separating it from a preceding gloss
// word when both would run together.
func (g *glossWriter) raw(r rune) {
	if g.gloss && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
		g.sb.WriteByte(' ')
	}
	g.sb.WriteRune(r)
	g.gloss = false
	g.spaced = !unicode.IsSpace(r) && !opening[r]
}

// Translate glosses a single string.
func (o *OfflineTranslator) Translate(s string) string {
	runes := []rune(norm.NFKC.String(s))

	var g glossWriter
	for i := 0; i < len(runes); {
		if v, n := o.dict.longestMatch(runes, i); n > 0 {
			g.word(v)
			i += n
			continue
		}

		r := runes[i]
		switch {
		case isKana(r):
			j := i
			for j < len(runes) && isKana(runes[j]) {
				if _, n := o.dict.longestMatch(runes, j); n > 0 && j > i {
					break
				}
				j++
			}
			g.word(romanize(runes[i:j]))
			i = j
		case punctuation[r] != "":
			g.punct(r, punctuation[r])
			i++
		default:
			g.raw(r)
			i++
		}
	}
	return g.sb.String()
}
