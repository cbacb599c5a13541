// Package bayes is a multinomial naive Bayes review classifier used as the
// local fake-probability model
package bayes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
)

// Class is a training label
type Class string

const (
	// ClassFake marks fabricated reviews
	ClassFake Class = "fake"
	// ClassGenuine marks authentic reviews
	ClassGenuine Class = "genuine"
)

// ErrNotTrained is returned while either class has no documents
var ErrNotTrained = errors.New("bayes: model not trained")

// Document is one labelled, tokenized review
type Document struct {
	Class  Class
	Tokens []string
}

// Labelled builds a Document from raw review text, canonicalized the same
// way the engine normalizes submissions
func Labelled(text string, fake bool) Document {
	c := ClassGenuine
	if fake {
		c = ClassFake
	}
	return Document{Class: c, Tokens: normalize.Tokenize(normalize.Canonical(text))}
}

// Model holds per-class document and token counts. Safe for concurrent use;
// Learn takes the write lock, scoring the read lock
type Model struct {
	mu      sync.RWMutex
	version string
	docs    map[Class]int
	words   map[Class]map[string]int
	totals  map[Class]int
	vocab   map[string]struct{}
}

// New returns an empty model tagged with version
func New(version string) *Model {
	m := &Model{version: version}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.docs = map[Class]int{}
	m.words = map[Class]map[string]int{ClassFake: {}, ClassGenuine: {}}
	m.totals = map[Class]int{}
	m.vocab = map[string]struct{}{}
}

// Version returns the artifact version tag
func (m *Model) Version() string { return m.version }

// Learn adds documents to the counts; unknown classes are ignored
func (m *Model) Learn(docs ...Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		w, ok := m.words[d.Class]
		if !ok {
			continue
		}
		m.docs[d.Class]++
		for _, t := range d.Tokens {
			w[t]++
			m.totals[d.Class]++
			m.vocab[t] = struct{}{}
		}
	}
}

// Train builds a model from docs and fails when either class is missing
func Train(version string, docs []Document) (*Model, error) {
	m := New(version)
	m.Learn(docs...)
	if !m.Ready() {
		return nil, ErrNotTrained
	}
	return m, nil
}

// Ready reports whether both classes have at least one document
func (m *Model) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready()
}

func (m *Model) ready() bool { return m.docs[ClassFake] > 0 && m.docs[ClassGenuine] > 0 }

// Stats returns document counts per class and the vocabulary size
func (m *Model) Stats() (fake, genuine, vocab int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[ClassFake], m.docs[ClassGenuine], len(m.vocab)
}

// Probability returns P(fake | tokens) with Laplace smoothing.
// Tokens outside the vocabulary carry no evidence and are skipped
func (m *Model) Probability(tokens []string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready() {
		return 0, ErrNotTrained
	}

	lf := m.logPosterior(ClassFake, tokens)
	lg := m.logPosterior(ClassGenuine, tokens)
	// sigmoid of the log-odds, stable for large magnitudes
	d := lg - lf
	if d > 700 {
		return 0, nil
	}
	return 1 / (1 + math.Exp(d)), nil
}

func (m *Model) logPosterior(c Class, tokens []string) float64 {
	all := m.docs[ClassFake] + m.docs[ClassGenuine]
	lp := math.Log(float64(m.docs[c]) / float64(all))
	denom := float64(m.totals[c] + len(m.vocab))
	w := m.words[c]
	for _, t := range tokens {
		if _, ok := m.vocab[t]; !ok {
			continue
		}
		lp += math.Log(float64(w[t]+1) / denom)
	}
	return lp
}

// Score implements engine.ModelScorer
func (m *Model) Score(_ context.Context, t normalize.Text) (float64, error) {
	p, err := m.Probability(t.Tokens)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", engine.ErrModelUnavailable, err)
	}
	return p, nil
}

// Health reports the model version, or ErrModelUnavailable while untrained
func (m *Model) Health(context.Context) (string, error) {
	if !m.Ready() {
		return m.version, fmt.Errorf("%w: %w", engine.ErrModelUnavailable, ErrNotTrained)
	}
	return m.version, nil
}
