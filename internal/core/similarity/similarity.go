// Package similarity scores a review against a bounded window of prior
// accepted reviews for the same target
package similarity

import (
	"errors"
	"sync"

	"reviewguard/internal/core/normalize"
)

// DefaultWindow is the per-target capacity used when New gets window < 1
const DefaultWindow = 200

// ErrNoTarget is returned by Insert when the target identity is empty
var ErrNoTarget = errors.New("similarity: empty target")

// Index holds the N most recent accepted texts per target.
// Buckets are created lazily and locked independently; lookups for one target
// never wait on inserts for another
type Index struct {
	window  int
	buckets sync.Map // target -> *bucket
}

type entry struct {
	value string
	set   map[string]struct{}
}

// bucket is a fixed-size ring; writes replace whole entries under mu so a
// reader holding RLock sees the ring either before or after an insert
type bucket struct {
	mu   sync.RWMutex
	ring []entry
	next int
	size int
}

// New creates an Index keeping at most window entries per target
func New(window int) *Index {
	if window < 1 {
		window = DefaultWindow
	}
	return &Index{window: window}
}

// Window returns the per-target capacity
func (x *Index) Window() int { return x.window }

func (x *Index) get(target string) *bucket {
	if b, ok := x.buckets.Load(target); ok {
		return b.(*bucket)
	}
	return nil
}

func (x *Index) getOrCreate(target string) *bucket {
	if b := x.get(target); b != nil {
		return b
	}
	b, _ := x.buckets.LoadOrStore(target, &bucket{ring: make([]entry, x.window)})
	return b.(*bucket)
}

// Similarity returns the maximum Jaccard similarity between the token set of
// tokens and each entry held for target. Unknown targets score 0
func (x *Index) Similarity(target string, tokens []string) float64 {
	b := x.get(target)
	if b == nil || len(tokens) == 0 {
		return 0
	}
	q := Set(tokens)

	b.mu.RLock()
	defer b.mu.RUnlock()
	best := 0.0
	for i := 0; i < b.size; i++ {
		if s := Jaccard(q, b.ring[i].set); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}

// Insert appends t to the target's window, evicting the oldest entry when full
func (x *Index) Insert(target string, t normalize.Text) error {
	if target == "" {
		return ErrNoTarget
	}
	e := entry{value: t.Value, set: Set(t.Tokens)}
	b := x.getOrCreate(target)

	b.mu.Lock()
	b.ring[b.next] = e
	b.next = (b.next + 1) % len(b.ring)
	if b.size < len(b.ring) {
		b.size++
	}
	b.mu.Unlock()
	return nil
}

// Warm inserts texts oldest-first; used to rebuild the index from storage
func (x *Index) Warm(target string, texts []normalize.Text) error {
	for _, t := range texts {
		if err := x.Insert(target, t); err != nil {
			return err
		}
	}
	return nil
}

// Len reports how many entries target currently holds
func (x *Index) Len(target string) int {
	b := x.get(target)
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Contains reports whether a canonical value is present in target's window
func (x *Index) Contains(target, value string) bool {
	b := x.get(target)
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := 0; i < b.size; i++ {
		if b.ring[i].value == value {
			return true
		}
	}
	return false
}

// Set builds a token set
func Set(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Jaccard returns |a∩b| / |a∪b|; two empty sets score 0
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
