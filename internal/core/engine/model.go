package engine

import (
	"context"
	"errors"
	"math"

	"reviewguard/internal/core/normalize"
)

// ErrModelUnavailable marks a model that could not produce a score.
// Providers wrap it so callers can match with errors.Is
var ErrModelUnavailable = errors.New("model unavailable")

// ModelScorer returns the probability in [0,1] that a review is fabricated
type ModelScorer interface {
	Score(ctx context.Context, t normalize.Text) (float64, error)
}

// ModelFunc adapts a function to ModelScorer
type ModelFunc func(ctx context.Context, t normalize.Text) (float64, error)

// Score implements ModelScorer
func (f ModelFunc) Score(ctx context.Context, t normalize.Text) (float64, error) { return f(ctx, t) }

// scoreModel calls m and normalizes its failure modes onto ErrModelUnavailable
func scoreModel(ctx context.Context, m ModelScorer, t normalize.Text) (float64, error) {
	if m == nil {
		return 0, ErrModelUnavailable
	}
	p, err := m.Score(ctx, t)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return 0, err
		}
		return 0, errors.Join(ErrModelUnavailable, err)
	}
	if math.IsNaN(p) {
		return 0, ErrModelUnavailable
	}
	return clamp(p), nil
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
