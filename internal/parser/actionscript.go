package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ActionScriptParser extracts display text from ActionScript sources exported by JPEXS.
type ActionScriptParser struct {
	classifier *classifier
}

// NewActionScriptParser creates a parser with the given classifier configuration.
func NewActionScriptParser(rules Rules) (*ActionScriptParser, error) {
	c, err := newClassifier(rules)
	if err != nil {
		return nil, err
	}
	return &ActionScriptParser{classifier: c}, nil
}

// Mode returns the classification mode of this parser.
func (p *ActionScriptParser) Mode() Mode { return p.classifier.mode }

func (p *ActionScriptParser) Kind() Kind { return KindActionScript }

func (p *ActionScriptParser) CanParse(ext string) bool {
	return ext == ".as"
}

func (p *ActionScriptParser) Parse(filePath, content string) (*ParseResult, error) {
	lx := &asLexer{
		src:        content,
		b:          newBuilder(filePath, KindActionScript, content),
		classifier: p.classifier,
	}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.b.result, nil
}

func (p *ActionScriptParser) Reconstruct(result *ParseResult, translated []string) (string, error) {
	return result.reconstruct(translated)
}

type tokenKind int

const (
	tokNone tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokPunct
	tokString
	tokRegex
)

// Keywords after which a slash starts a regular expression literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true,
}

const operatorChars = "=!<>+-*/%&|^~?:"

// asLexer walks ActionScript source, copying everything that is not an
// extracted literal verbatim into the builder.
type asLexer struct {
	src        string
	b          *builder
	classifier *classifier

	pos     int // start of the pending verbatim run
	i       int
	last    tokenKind
	lastTok string
	lastID  string   // most recent identifier, for callee tracking
	calls   []string // callee per open parenthesis
	index   []bool   // per open bracket, whether it is a subscript
}

func (lx *asLexer) run() error {
	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			lx.i++
		case c == '/' && lx.peek(1) == '/':
			lx.skipLineComment()
		case c == '/' && lx.peek(1) == '*':
			lx.skipBlockComment()
		case c == '/' && lx.regexAllowed() && lx.scanRegex():
			lx.setToken(tokRegex, "")
		case c == '<' && isASCIILetter(lx.peek(1)) && lx.regexAllowed() && lx.lastTok != "." && lx.scanXML():
			lx.setToken(tokString, "")
		case c == '"' || c == '\'':
			if err := lx.scanString(c); err != nil {
				return err
			}
		case isIdentStart(lx.src, lx.i):
			lx.scanIdent()
		case isDigit(c) || (c == '.' && isDigit(lx.peek(1))):
			lx.scanNumber()
		case strings.IndexByte(operatorChars, c) >= 0:
			lx.scanOperator()
		default:
			lx.i++
			tok := string(c)
			switch c {
			case '(':
				callee := ""
				if lx.last == tokIdent {
					callee = lx.lastID
				}
				lx.calls = append(lx.calls, callee)
			case ')':
				if n := len(lx.calls); n > 0 {
					lx.calls = lx.calls[:n-1]
				}
			case '[':
				sub := lx.last == tokIdent || lx.last == tokString ||
					(lx.last == tokPunct && (lx.lastTok == ")" || lx.lastTok == "]"))
				lx.index = append(lx.index, sub)
			case ']':
				if n := len(lx.index); n > 0 {
					lx.index = lx.index[:n-1]
				}
			}
			lx.setToken(tokPunct, tok)
		}
	}
	lx.b.verbatim(lx.src[lx.pos:])
	return nil
}

func (lx *asLexer) peek(n int) byte {
	if lx.i+n < len(lx.src) {
		return lx.src[lx.i+n]
	}
	return 0
}

func (lx *asLexer) setToken(kind tokenKind, text string) {
	lx.last = kind
	lx.lastTok = text
}

func (lx *asLexer) regexAllowed() bool {
	switch lx.last {
	case tokNone, tokKeyword:
		return true
	case tokPunct:
		switch lx.lastTok {
		case ")", "]", "++", "--":
			return false
		}
		return true
	default:
		return false
	}
}

func (lx *asLexer) skipLineComment() {
	end := strings.IndexByte(lx.src[lx.i:], '\n')
	if end < 0 {
		lx.i = len(lx.src)
		return
	}
	lx.i += end
}

func (lx *asLexer) skipBlockComment() {
	end := strings.Index(lx.src[lx.i+2:], "*/")
	if end < 0 {
		lx.i = len(lx.src)
		return
	}
	lx.i += 2 + end + 2
}

// scanRegex consumes a regular expression literal. It returns false, leaving
// the position unchanged, when the slash turns out to be a division.
func (lx *asLexer) scanRegex() bool {
	inClass := false
	for j := lx.i + 1; j < len(lx.src); j++ {
		switch lx.src[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\n', '\r':
			return false
		case '/':
			if inClass {
				continue
			}
			j++
			for j < len(lx.src) && isASCIILetter(lx.src[j]) {
				j++
			}
			lx.i = j
			return true
		}
	}
	return false
}

// scanXML consumes an E4X literal such as <msg>text</msg> up to the tag that
// closes it. The literal is copied verbatim. It returns false, leaving the
// position unchanged, when no matching close tag follows.
func (lx *asLexer) scanXML() bool {
	name, end, selfClosing, ok := xmlOpenTag(lx.src, lx.i)
	if !ok {
		return false
	}
	if selfClosing {
		lx.i = end
		return true
	}
	depth := 1
	for j := end; j < len(lx.src); {
		k := strings.IndexByte(lx.src[j:], '<')
		if k < 0 {
			return false
		}
		j += k
		rest := lx.src[j:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			e := strings.Index(rest, "-->")
			if e < 0 {
				return false
			}
			j += e + 3
		case strings.HasPrefix(rest, "<![CDATA["):
			e := strings.Index(rest, "]]>")
			if e < 0 {
				return false
			}
			j += e + 3
		case strings.HasPrefix(rest, "</"):
			e := strings.IndexByte(rest, '>')
			if e < 0 {
				return false
			}
			j += e + 1
			if strings.TrimSpace(rest[2:e]) != name {
				continue
			}
			depth--
			if depth == 0 {
				lx.i = j
				return true
			}
		default:
			inner, e, self, ok := xmlOpenTag(lx.src, j)
			if !ok {
				j++
				continue
			}
			if !self && inner == name {
				depth++
			}
			j = e
		}
	}
	return false
}

// xmlOpenTag reads the start tag at src[i], which must be '<'. It returns the
// tag name and the offset just past the closing '>'.
func xmlOpenTag(src string, i int) (name string, end int, selfClosing, ok bool) {
	j := i + 1
	for j < len(src) && (isASCIILetter(src[j]) || isDigit(src[j]) || strings.IndexByte("_:.-", src[j]) >= 0) {
		j++
	}
	if j == i+1 {
		return "", 0, false, false
	}
	name = src[i+1 : j]
	var quote byte
	for ; j < len(src); j++ {
		c := src[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '<':
			return "", 0, false, false
		case c == '>':
			return name, j + 1, src[j-1] == '/', true
		}
	}
	return "", 0, false, false
}

func (lx *asLexer) scanIdent() {
	start := lx.i
	for lx.i < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.i:])
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			lx.i += size
			continue
		}
		break
	}
	word := lx.src[start:lx.i]
	if regexKeywords[word] {
		lx.setToken(tokKeyword, word)
		return
	}
	lx.lastID = word
	lx.setToken(tokIdent, word)
}

func (lx *asLexer) scanNumber() {
	for lx.i < len(lx.src) {
		c := lx.src[lx.i]
		if isDigit(c) || isASCIILetter(c) || c == '.' || c == '_' {
			lx.i++
			continue
		}
		break
	}
	lx.setToken(tokNumber, "")
}

func (lx *asLexer) scanOperator() {
	start := lx.i
	for lx.i < len(lx.src) && strings.IndexByte(operatorChars, lx.src[lx.i]) >= 0 {
		// Stop before a comment that directly follows an operator.
		if lx.i > start && lx.src[lx.i] == '/' && (lx.peek(1) == '/' || lx.peek(1) == '*') {
			break
		}
		lx.i++
	}
	lx.setToken(tokPunct, lx.src[start:lx.i])
}

// scanString consumes a quoted literal and hands it to the classifier.
func (lx *asLexer) scanString(quote byte) error {
	start := lx.i
	j := start + 1
	for {
		if j >= len(lx.src) {
			return lx.malformed(start, "unterminated string literal")
		}
		c := lx.src[j]
		if c == '\\' {
			if j+1 < len(lx.src) && lx.src[j+1] == '\r' && j+2 < len(lx.src) && lx.src[j+2] == '\n' {
				j += 3
			} else {
				j += 2
			}
			continue
		}
		if c == quote {
			break
		}
		if c == '\n' || c == '\r' {
			return lx.malformed(start, "line break inside string literal")
		}
		j++
	}

	body := lx.src[start+1 : j]
	lx.i = j + 1
	lx.literal(start, quote, body)
	lx.setToken(tokString, "")
	return nil
}

func (lx *asLexer) malformed(offset int, reason string) error {
	line, col := lx.b.position(offset)
	return &MalformedLiteralError{File: lx.b.result.FilePath, Line: line, Column: col, Reason: reason}
}

// literal classifies the literal at src[start:lx.i] and records it.
func (lx *asLexer) literal(start int, quote byte, body string) {
	value := decodeLiteral(body)
	ctx := literalContext{
		line:      lx.b.lineAt(start),
		prevOp:    lx.prevPunct(),
		nextOp:    lx.nextPunct(),
		caseLabel: lx.last == tokKeyword && lx.lastTok == "case",
	}
	if ctx.prevOp == "(" && len(lx.calls) > 0 {
		ctx.callee = lx.calls[len(lx.calls)-1]
	}
	if ctx.prevOp == "[" && len(lx.index) > 0 {
		ctx.subscript = lx.index[len(lx.index)-1]
	}
	if !lx.classifier.retain(value, ctx) {
		return
	}

	lx.b.verbatim(lx.src[lx.pos : start+1])
	bodyStart := start + 1
	q := string(quote)

	if chunked(value) && lx.chunk(bodyStart, quote, body) {
		lx.b.verbatim(q)
		lx.pos = lx.i
		return
	}

	meta := map[string]string{"literal": "string", "quote": q}
	if ctx.callee != "" {
		meta["callee"] = ctx.callee
	}
	lx.b.text(body, value, bodyStart, meta, func(v string) string {
		return encodeLiteral(v, quote)
	})
	lx.b.verbatim(q)
	lx.pos = lx.i
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// chunk splits an HTML literal body around tags and entities. It returns false
// without recording anything when the markup splits an escape sequence.
func (lx *asLexer) chunk(bodyStart int, quote byte, body string) bool {
	locs := markupPattern.FindAllStringIndex(body, -1)
	type piece struct {
		raw    string
		offset int
		markup bool
	}
	var pieces []piece
	prev := 0
	for _, loc := range locs {
		pieces = append(pieces, piece{raw: body[prev:loc[0]], offset: prev})
		pieces = append(pieces, piece{raw: body[loc[0]:loc[1]], offset: loc[0], markup: true})
		prev = loc[1]
	}
	pieces = append(pieces, piece{raw: body[prev:], offset: prev})

	for _, pc := range pieces {
		if !pc.markup && trailingBackslashes(pc.raw)%2 == 1 {
			return false
		}
	}

	encode := func(v string) string {
		return encodeLiteral(htmlEscaper.Replace(v), quote)
	}
	for _, pc := range pieces {
		if pc.markup {
			lx.b.verbatim(pc.raw)
			continue
		}
		value := decodeLiteral(pc.raw)
		if strings.TrimSpace(value) == "" {
			lx.b.verbatim(pc.raw)
			continue
		}
		meta := map[string]string{"literal": "html", "quote": string(quote)}
		lx.b.text(pc.raw, value, bodyStart+pc.offset, meta, encode)
	}
	return true
}

// prevPunct returns the last token when it was punctuation or an operator.
func (lx *asLexer) prevPunct() string {
	if lx.last == tokPunct {
		return lx.lastTok
	}
	return ""
}

// nextPunct returns the punctuation or operator token following the current position.
func (lx *asLexer) nextPunct() string {
	j := lx.i
	for j < len(lx.src) && (lx.src[j] == ' ' || lx.src[j] == '\t') {
		j++
	}
	if j >= len(lx.src) {
		return ""
	}
	c := lx.src[j]
	if strings.IndexByte(operatorChars, c) >= 0 {
		k := j
		for k < len(lx.src) && strings.IndexByte(operatorChars, lx.src[k]) >= 0 {
			k++
		}
		return lx.src[j:k]
	}
	if strings.IndexByte("()[]{},;", c) >= 0 {
		return string(c)
	}
	return ""
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

func isIdentStart(s string, i int) bool {
	c := s[i]
	if c == '_' || c == '$' || isASCIILetter(c) {
		return true
	}
	if c < utf8.RuneSelf {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
