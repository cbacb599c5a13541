// Package repetition scores the internal redundancy of a single review
package repetition

import "strings"

// DefaultN is the n-gram width used when a caller passes n < 1
const DefaultN = 3

// gram key separator; never produced by the tokenizer
const sep = "\x1f"

// Score returns the share of duplicate n-gram occurrences among all overlapping
// n-grams of tokens, i.e. 1 - unique/total, clamped to [0,1].
// Fewer than n tokens score 0
func Score(tokens []string, n int) float64 {
	if n < 1 {
		n = DefaultN
	}
	if len(tokens) < n {
		return 0
	}

	total := len(tokens) - n + 1
	seen := make(map[string]struct{}, total)
	for i := 0; i < total; i++ {
		seen[strings.Join(tokens[i:i+n], sep)] = struct{}{}
	}
	return clamp(1 - float64(len(seen))/float64(total))
}

// Top returns the most repeated n-gram and its occurrence count.
// Ties resolve to the earliest gram; an empty gram means no n-gram repeats
func Top(tokens []string, n int) (gram string, count int) {
	if n < 1 {
		n = DefaultN
	}
	if len(tokens) < n {
		return "", 0
	}
	counts := make(map[string]int, len(tokens))
	for i := 0; i+n <= len(tokens); i++ {
		k := strings.Join(tokens[i:i+n], sep)
		counts[k]++
		if c := counts[k]; c > count {
			gram, count = k, c
		}
	}
	if count < 2 {
		return "", 0
	}
	return strings.ReplaceAll(gram, sep, " "), count
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
