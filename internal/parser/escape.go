package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeLiteral resolves ActionScript escape sequences in the body of a string
// literal. Invalid escapes decode to the escaped character, as in non-strict
// ECMAScript, so decoding never fails.
func decodeLiteral(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			sb.WriteByte(c)
			break
		}

		n := body[i+1]
		i += 2
		switch n {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			if i < len(body) && isDigit(body[i]) {
				sb.WriteByte('0')
			} else {
				sb.WriteByte(0)
			}
		case '\n':
			// Line continuation.
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(body, i, 2); ok {
				sb.WriteRune(r)
				i += 2
			} else {
				sb.WriteByte('x')
			}
		case 'u':
			r, width, ok := parseUnicodeEscape(body, i)
			if !ok {
				sb.WriteByte('u')
				break
			}
			i += width
			if utf16.IsSurrogate(r) {
				// Combine UTF-16 surrogate pairs.
				if i+1 < len(body) && body[i] == '\\' && body[i+1] == 'u' {
					if lo, w, ok := parseUnicodeEscape(body, i+2); ok {
						if combined := utf16.DecodeRune(r, lo); combined != utf8.RuneError {
							sb.WriteRune(combined)
							i += 2 + w
							break
						}
					}
				}
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(n)
		}
	}
	return sb.String()
}

// encodeLiteral escapes value so it can be placed between quote characters.
func encodeLiteral(value string, quote byte) string {
	var sb strings.Builder
	sb.Grow(len(value) + 2)
	for _, r := range value {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		default:
			if r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029' {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// parseUnicodeEscape parses the part after `\u`: either four hex digits or a
// braced code point. It returns the rune and the number of bytes consumed.
func parseUnicodeEscape(s string, i int) (rune, int, bool) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 || end > 7 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[i+1:i+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	r, ok := parseHex(s, i, 4)
	return r, 4, ok
}

func parseHex(s string, i, n int) (rune, bool) {
	if i+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
