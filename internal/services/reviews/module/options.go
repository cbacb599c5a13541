package module

import (
	"time"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/core/repetition"
	"reviewguard/internal/core/similarity"
	"reviewguard/internal/platform/config"
)

// Model kinds
const (
	ModelBayes  = "bayes"
	ModelRemote = "remote"
	ModelNone   = "none"
)

// Limiter kinds
const (
	LimiterMemory = "memory"
	LimiterPG     = "pg"
)

// Options controls the engine policy and which adapters back it
type Options struct {
	Engine engine.Config

	ModelKind    string
	ModelPath    string
	ModelURL     string
	ModelTimeout time.Duration

	Limiter     string
	LockTimeout time.Duration

	// WarmLimit is the number of stored reviews per target replayed at startup
	WarmLimit int
	// KeepDays is how many days of rate counters Sweep retains
	KeepDays int
}

// FromConfig reads REVIEWS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("REVIEWS_")
	return Options{
		Engine: engine.Config{
			Thresholds: engine.Thresholds{
				Fake:       rc.MayFloat64("FAKE_THRESHOLD", 0.7),
				Repetitive: rc.MayFloat64("REPETITIVE_THRESHOLD", 0.8),
				Similarity: rc.MayFloat64("SIMILARITY_THRESHOLD", 0.9),
			},
			Limits: ratelimit.Limits{
				PerSubmitter: rc.MayInt("MAX_PER_USER_PER_DAY", ratelimit.DefaultPerSubmitter),
				PerContact:   rc.MayInt("MAX_PER_EMAIL_PER_DAY", ratelimit.DefaultPerContact),
			},
			Bounds: normalize.Bounds{
				Min: rc.MayInt("MIN_LENGTH", normalize.DefaultMinTokens),
				Max: rc.MayInt("MAX_LENGTH", normalize.DefaultMaxTokens),
			},
			NGram:       rc.MayInt("NGRAM", repetition.DefaultN),
			Window:      rc.MayInt("SIMILARITY_WINDOW", similarity.DefaultWindow),
			ModelPolicy: engine.ModelPolicy(rc.MayEnum("MODEL_POLICY", string(engine.PolicyDegrade), string(engine.PolicyDegrade), string(engine.PolicyReject))),
		},
		ModelKind:    rc.MayEnum("MODEL_KIND", ModelBayes, ModelBayes, ModelRemote, ModelNone),
		ModelPath:    rc.MayString("MODEL_PATH", "models/model.json"),
		ModelURL:     rc.MayString("MODEL_URL", "http://localhost:8000"),
		ModelTimeout: rc.MayDuration("MODEL_TIMEOUT", 5*time.Second),
		Limiter:      rc.MayEnum("LIMITER", LimiterMemory, LimiterMemory, LimiterPG),
		LockTimeout:  rc.MayDuration("LOCK_TIMEOUT", 2*time.Second),
		WarmLimit:    rc.MayInt("WARM_LIMIT", 200),
		KeepDays:     rc.MayInt("KEEP_DAYS", 2),
	}
}

