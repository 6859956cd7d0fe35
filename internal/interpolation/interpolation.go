package interpolation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Mapping stores the original placeholder and its safe replacement.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns detect text a translation engine must not touch in Flash strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
	regexp.MustCompile(`</?[A-Za-z][^<>]*>`),                   // <font color='#fff'>, </b>, <br/>
	regexp.MustCompile(`&[a-zA-Z0-9#]+;`),                      // &nbsp;, &#12354;
}

// placeholderPattern matches a placeholder after a round trip through an
// engine, which may change spacing or case.
var placeholderPattern = regexp.MustCompile(`(?i)\{\{\s*var_(\d+)\s*\}\}`)

// Protect replaces all interpolation variables with safe {{var_N}} placeholders.
// Returns the safe string and a mapping to restore originals after translation.
func Protect(text string) (string, []Mapping) {
	var allMatches []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			allMatches = append(allMatches, varMatch{
				start: loc[0],
				end:   loc[1],
				value: text[loc[0]:loc[1]],
			})
		}
	}

	if len(allMatches) == 0 {
		return text, nil
	}

	// Sort by position, longest first on ties.
	sort.Slice(allMatches, func(i, j int) bool {
		if allMatches[i].start != allMatches[j].start {
			return allMatches[i].start < allMatches[j].start
		}
		return allMatches[i].end > allMatches[j].end
	})

	// Remove overlapping matches (keep the first/longest).
	var filtered []varMatch
	lastEnd := -1
	for _, m := range allMatches {
		if m.start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.end
		}
	}

	var sb strings.Builder
	mappings := make([]Mapping, 0, len(filtered))
	prev := 0
	for i, m := range filtered {
		placeholder := fmt.Sprintf("{{var_%d}}", i+1)
		mappings = append(mappings, Mapping{
			Original:    m.value,
			Placeholder: placeholder,
			Index:       i + 1,
		})
		sb.WriteString(text[prev:m.start])
		sb.WriteString(placeholder)
		prev = m.end
	}
	sb.WriteString(text[prev:])

	return sb.String(), mappings
}

// Restore replaces {{var_N}} placeholders back with the original interpolation
// variables. It returns the mappings whose placeholder was not found.
func Restore(translated string, mappings []Mapping) (string, []Mapping) {
	if len(mappings) == 0 {
		return translated, nil
	}

	seen := make(map[int]bool, len(mappings))
	result := placeholderPattern.ReplaceAllStringFunc(translated, func(token string) string {
		idx, err := strconv.Atoi(placeholderPattern.FindStringSubmatch(token)[1])
		if err != nil || idx < 1 || idx > len(mappings) || seen[idx] {
			return token
		}
		seen[idx] = true
		return mappings[idx-1].Original
	})

	var missing []Mapping
	for _, m := range mappings {
		if !seen[m.Index] {
			missing = append(missing, m)
		}
	}
	return result, missing
}
