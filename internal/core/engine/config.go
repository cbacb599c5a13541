package engine

import (
	"fmt"

	"reviewguard/internal/core/normalize"
	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/core/repetition"
	"reviewguard/internal/core/similarity"
)

// ModelPolicy decides what happens when the model cannot score
type ModelPolicy string

const (
	// PolicyDegrade scores with repetition and similarity only; ModelFake never fires
	PolicyDegrade ModelPolicy = "degrade"
	// PolicyReject fails the evaluation with an Unavailable error
	PolicyReject ModelPolicy = "reject"
)

// Thresholds are inclusive; a score >= its threshold fires the reason
type Thresholds struct {
	Repetitive float64
	Similarity float64
	Fake       float64
}

// Config is passed at construction; engines never read ambient state
type Config struct {
	Thresholds  Thresholds
	Limits      ratelimit.Limits
	Bounds      normalize.Bounds
	NGram       int
	Window      int
	ModelPolicy ModelPolicy
}

// DefaultConfig returns the stock policy
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{Repetitive: 0.8, Similarity: 0.9, Fake: 0.7},
		Limits:     ratelimit.DefaultLimits(),
		Bounds: normalize.Bounds{
			Min: normalize.DefaultMinTokens,
			Max: normalize.DefaultMaxTokens,
		},
		NGram:       repetition.DefaultN,
		Window:      similarity.DefaultWindow,
		ModelPolicy: PolicyDegrade,
	}
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"repetitive threshold": c.Thresholds.Repetitive,
		"similarity threshold": c.Thresholds.Similarity,
		"fake threshold":       c.Thresholds.Fake,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("engine: %s %v outside [0,1]", name, v)
		}
	}
	if c.Bounds.Min < 0 || (c.Bounds.Max > 0 && c.Bounds.Max < c.Bounds.Min) {
		return fmt.Errorf("engine: bad length bounds [%d,%d]", c.Bounds.Min, c.Bounds.Max)
	}
	if c.NGram < 1 {
		return fmt.Errorf("engine: ngram %d < 1", c.NGram)
	}
	switch c.ModelPolicy {
	case PolicyDegrade, PolicyReject:
	default:
		return fmt.Errorf("engine: unknown model policy %q", c.ModelPolicy)
	}
	return nil
}
