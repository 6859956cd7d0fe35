package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"swf-translator/internal/textutil"
)

// Mode selects how string literals in ActionScript are classified.
type Mode string

const (
	// ModeHeuristic keeps every literal that is not clearly code: identifiers,
	// numbers, paths, and literals in non-text contexts are excluded.
	ModeHeuristic Mode = "heuristic"
	// ModeJapanese keeps <html> literals and Japanese literals that carry
	// sentence punctuation or are runs of six or more kana/kanji.
	ModeJapanese Mode = "japanese"
	// ModeHTML keeps only <html>...</html> literals.
	ModeHTML Mode = "html"
)

// Modes lists the supported classification modes.
var Modes = []Mode{ModeHeuristic, ModeJapanese, ModeHTML}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported actionscript mode %q (use one of %v)", s, Modes)
}

// Rules is the classifier configuration for ActionScript literals.
type Rules struct {
	// Mode selects the classification strategy.
	Mode Mode
	// MinRunes is the shortest literal kept in heuristic mode.
	MinRunes int
	// NonTextCallees are functions whose first string argument is never display text.
	NonTextCallees []string
	// NonTextLinePrefixes mark whole lines (after trimming) whose literals are code.
	NonTextLinePrefixes []string
}

// DefaultRules returns the built-in classifier configuration for mode.
func DefaultRules(mode Mode) Rules {
	return Rules{
		Mode:     mode,
		MinRunes: 2,
		NonTextCallees: []string{
			"addEventListener", "removeEventListener", "hasEventListener", "willTrigger",
			"getDefinitionByName", "getDefinition", "hasDefinition", "getQualifiedClassName",
			"getChildByName", "gotoAndPlay", "gotoAndStop", "hasOwnProperty",
			"propertyIsEnumerable", "trace", "getLocal", "navigateToURL", "URLRequest",
			"Event", "MouseEvent", "KeyboardEvent", "TimerEvent", "Namespace", "QName",
			"RegExp", "call", "addCallback", "setStyle", "getStyle", "fscommand",
			"loadMovie", "loadVariables", "attachMovie", "createEmptyMovieClip",
			"registerClassAlias", "getAttribute", "attribute",
		},
		NonTextLinePrefixes: []string{"import ", "package ", "include ", "#include", "use namespace"},
	}
}

var (
	htmlDocumentPattern   = regexp.MustCompile(`(?s)^<html>.*</html>$`)
	htmlTagPattern        = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	markupPattern         = regexp.MustCompile(`\s*</?[^>]*>\s*|\s*&[a-zA-Z0-9#]+;\s*`)
	sentencePunctuation   = regexp.MustCompile(`[「」、。？…]`)
	otherLetterRun        = regexp.MustCompile(`^\p{Lo}{6,}$`)
	numericPattern        = regexp.MustCompile(`^[-+]?(0[xX][0-9a-fA-F]+|#[0-9a-fA-F]{3,8}|[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?)(px|%)?$`)
	identifierPattern     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	titleWordPattern      = regexp.MustCompile(`^[A-Z][a-z']+$`)
	dottedNamePattern     = regexp.MustCompile(`^[A-Za-z_$][\w$]*([.:][A-Za-z_$][\w$]*)+$`)
	pathPattern           = regexp.MustCompile(`^\S*[/\\]\S*$|^[\w.-]+\.[A-Za-z0-9]{2,4}$`)
	metadataLinePattern   = regexp.MustCompile(`^\[\s*[A-Za-z]+\s*\(`)
	comparisonOperatorSet = map[string]bool{"==": true, "!=": true, "===": true, "!==": true}
)

// literalContext describes where a literal sits in the surrounding code.
type literalContext struct {
	line   string // the full source line
	callee string // function called when the literal is its first argument
	prevOp string // previous punctuation or operator token
	nextOp string // next punctuation or operator token

	subscript bool // the literal opens a subscript, as in o["key"]
	caseLabel bool // the literal follows the case keyword
}

// classifier is the compiled, read-only form of Rules.
type classifier struct {
	mode         Mode
	minRunes     int
	callees      map[string]bool
	linePrefixes []string
}

func newClassifier(r Rules) (*classifier, error) {
	if r.Mode == "" {
		r.Mode = ModeHeuristic
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return nil, err
	}
	c := &classifier{
		mode:         r.Mode,
		minRunes:     r.MinRunes,
		callees:      make(map[string]bool, len(r.NonTextCallees)),
		linePrefixes: append([]string(nil), r.NonTextLinePrefixes...),
	}
	for _, name := range r.NonTextCallees {
		c.callees[name] = true
	}
	return c, nil
}

// retain reports whether a decoded literal should be extracted.
func (c *classifier) retain(value string, ctx literalContext) bool {
	switch c.mode {
	case ModeHTML:
		return htmlDocumentPattern.MatchString(value)
	case ModeJapanese:
		return htmlDocumentPattern.MatchString(value) ||
			(textutil.ContainsJapanese(value) &&
				(sentencePunctuation.MatchString(value) || otherLetterRun.MatchString(value)))
	}

	if c.nonTextContext(ctx) {
		return false
	}
	if htmlTagPattern.MatchString(value) {
		return true
	}
	if utf8.RuneCountInString(value) < c.minRunes || !hasLetter(value) {
		return false
	}
	if numericPattern.MatchString(value) {
		return false
	}
	if isASCII(value) {
		if identifierPattern.MatchString(value) && !titleWordPattern.MatchString(value) {
			return false
		}
		if dottedNamePattern.MatchString(value) || pathPattern.MatchString(value) {
			return false
		}
	}
	return true
}

func (c *classifier) nonTextContext(ctx literalContext) bool {
	line := strings.TrimSpace(ctx.line)
	for _, prefix := range c.linePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	if metadataLinePattern.MatchString(line) {
		return true
	}
	if ctx.prevOp == "(" && c.callees[ctx.callee] {
		return true
	}
	// o["key"]
	if ctx.subscript && ctx.nextOp == "]" {
		return true
	}
	// case "label":
	if ctx.caseLabel && ctx.nextOp == ":" {
		return true
	}
	// {"key": value}
	if (ctx.prevOp == "{" || ctx.prevOp == ",") && ctx.nextOp == ":" {
		return true
	}
	return comparisonOperatorSet[ctx.prevOp] || comparisonOperatorSet[ctx.nextOp]
}

// chunked reports whether a retained literal is split around its HTML markup.
func chunked(value string) bool {
	return htmlTagPattern.MatchString(value)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
