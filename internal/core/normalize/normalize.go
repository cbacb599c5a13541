// Package normalize canonicalizes raw review text before any scoring
// Pipeline order
// 1 drop invalid UTF-8 and control characters
// 2 Unicode NFKC normalization
// 3 Case folding, Cherokee pinned to capitals
// 4 Remove combining marks and format characters
// 5 Width fold fullwidth to ASCII
// 6 Collapse every whitespace run to a single space and trim
//
// Tokens are maximal runs of word runes over the canonical string. Length
// bounds are enforced on the token count.
package normalize

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	// ErrTooShort is returned when the token count is below Bounds.Min
	ErrTooShort = errors.New("normalize: text too short")
	// ErrTooLong is returned when the token count is above Bounds.Max
	ErrTooLong = errors.New("normalize: text too long")
)

// Default bounds in tokens
const (
	DefaultMinTokens = 10
	DefaultMaxTokens = 1000
)

// Bounds are inclusive token-count limits; a zero Max disables the upper bound
type Bounds struct {
	Min int
	Max int
}

// Text is a canonical review string plus its tokens
type Text struct {
	Value  string
	Tokens []string
}

// Len returns the length in tokens
func (t Text) Len() int { return len(t.Tokens) }

// Normalizer is concurrency safe; the transformer chains are pooled
type Normalizer struct {
	bounds Bounds
}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Map(cherokeeCapital),
			runes.Remove(runes.In(unicode.Mn)), // combining marks
			runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF etc
			width.Fold,
		)
	},
}

// folding alone moves Cherokee between the capital and small blocks on
// every pass, so pin it to the capital block
func cherokeeCapital(r rune) rune {
	switch {
	case r >= 0xAB70 && r <= 0xABBF:
		return r - 0xAB70 + 0x13A0
	case r >= 0x13F8 && r <= 0x13FD:
		return r - 8
	}
	return r
}

// New constructs a Normalizer enforcing b
func New(b Bounds) *Normalizer {
	if b.Min < 0 {
		b.Min = 0
	}
	return &Normalizer{bounds: b}
}

// Bounds returns the configured limits
func (n *Normalizer) Bounds() Bounds { return n.bounds }

// Normalize canonicalizes raw and checks its token count against the bounds.
// The returned Text is populated even on a bounds error so callers can report its length
func (n *Normalizer) Normalize(raw string) (Text, error) {
	v := Canonical(raw)
	t := Text{Value: v, Tokens: Tokenize(v)}
	switch {
	case t.Len() < n.bounds.Min:
		return t, ErrTooShort
	case n.bounds.Max > 0 && t.Len() > n.bounds.Max:
		return t, ErrTooLong
	}
	return t, nil
}

// Canonical applies the string pipeline without bounds checks.
// Passes repeat until the output is stable, so Canonical(Canonical(s)) == Canonical(s)
func Canonical(s string) string {
	for i := 0; i < maxPasses && s != ""; i++ {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

const maxPasses = 3

func pass(s string) string {
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// the chain only fails on malformed input Sanitize already dropped
		ns = s
	}

	// NFKC can surface new space runes (e.g. U+00A0 → space), so collapse last
	return collapseSpaces(ns)
}

// collapseSpaces converts every whitespace run, newlines included, to a single
// ASCII space and trims both ends
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
