package normalize

import (
	"unicode"
	"unicode/utf8"
)

// isWord reports whether r belongs to a token: letters, numbers and
// connector punctuation (Pc, e.g. underscore). Combining marks are already
// stripped by the pipeline. Apostrophes and hyphens split tokens
func isWord(r rune) bool {
	if r == utf8.RuneError || r == 0 {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.Is(unicode.Pc, r)
}

// Tokenize splits s into maximal runs of word runes
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := -1
	for i, r := range s {
		if isWord(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
