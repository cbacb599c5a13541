// Package engine fuses text signals and rate gating into a review verdict
package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"reviewguard/internal/core/normalize"
	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/core/repetition"
	"reviewguard/internal/core/similarity"
	perr "reviewguard/internal/platform/errors"
)

// Engine evaluates submissions. It is safe for concurrent use
type Engine struct {
	cfg   Config
	norm  *normalize.Normalizer
	index *similarity.Index
	gate  ratelimit.Gate
	model ModelScorer
	now   func() time.Time
}

// Option customizes an Engine
type Option func(*Engine)

// WithModel injects the fake-probability scorer; without one every
// evaluation sees ErrModelUnavailable
func WithModel(m ModelScorer) Option { return func(e *Engine) { e.model = m } }

// WithGate replaces the in-memory rate limiter
func WithGate(g ratelimit.Gate) Option { return func(e *Engine) { e.gate = g } }

// WithIndex shares a prior-review index between engines
func WithIndex(x *similarity.Index) Option { return func(e *Engine) { e.index = x } }

// WithClock overrides the time source used for zero SubmittedAt values
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New validates cfg and builds an Engine
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid engine config")
	}
	e := &Engine{
		cfg:  cfg,
		norm: normalize.New(cfg.Bounds),
		now:  time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.index == nil {
		e.index = similarity.New(cfg.Window)
	}
	if e.gate == nil {
		e.gate = ratelimit.NewMemory(cfg.Limits)
	}
	return e, nil
}

// Config returns the construction config
func (e *Engine) Config() Config { return e.cfg }

// Index returns the prior-review index
func (e *Engine) Index() *similarity.Index { return e.index }

// Gate returns the rate limiter
func (e *Engine) Gate() ratelimit.Gate { return e.gate }

// Evaluate runs the full pipeline for one submission. Business rejections are
// returned as verdict data; an error means the verdict could not be decided
func (e *Engine) Evaluate(ctx context.Context, s Submission) (Verdict, error) {
	v := Verdict{Reasons: []Reason{}, Stage: StageReceived}

	text, err := e.norm.Normalize(s.Text)
	v.Text, v.Tokens = text, text.Len()
	if err != nil {
		v.Reasons = append(v.Reasons, ReasonInvalidLength)
		v.decide()
		return v, nil
	}
	v.Stage = StageLengthChecked

	at := s.SubmittedAt
	if at.IsZero() {
		at = e.now()
	}
	v.Day = ratelimit.DayOf(at)

	d, err := e.gate.CheckAndIncrement(ctx, s.SubmitterID, s.ContactID, v.Day)
	if err != nil {
		if errors.Is(err, ratelimit.ErrEmptyIdentity) {
			return v, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "submitter and contact are required")
		}
		return v, perr.Wrap(err, perr.ErrorCodeUnavailable, "rate limiter unavailable")
	}
	if !d.Allowed {
		v.Reasons = append(v.Reasons, RateLimited(d.Dimension))
		v.decide()
		return v, nil
	}
	v.Stage = StageRateChecked

	if err := e.score(ctx, s.TargetID, text, &v); err != nil {
		return v, err
	}
	v.Stage = StageScored

	v.Reasons = Decide(v.Scores, e.cfg.Thresholds)
	v.Accepted = len(v.Reasons) == 0
	if v.Accepted {
		if err := e.index.Insert(s.TargetID, text); err != nil {
			v.warn(WarnIndexInsert)
		}
	}
	v.decide()
	return v, nil
}

// Analyze scores raw text against target without consuming rate limits or
// touching the index
func (e *Engine) Analyze(ctx context.Context, target, raw string) (Verdict, error) {
	v := Verdict{Reasons: []Reason{}, Stage: StageReceived}
	text, err := e.norm.Normalize(raw)
	v.Text, v.Tokens = text, text.Len()
	if err != nil {
		v.Reasons = append(v.Reasons, ReasonInvalidLength)
		v.decide()
		return v, nil
	}
	v.Stage = StageLengthChecked

	if err := e.score(ctx, target, text, &v); err != nil {
		return v, err
	}
	v.Stage = StageScored
	v.Reasons = Decide(v.Scores, e.cfg.Thresholds)
	v.Accepted = len(v.Reasons) == 0
	v.decide()
	return v, nil
}

// score fills v.Scores, running the three scorers concurrently.
// Only a model failure under PolicyReject is returned
func (e *Engine) score(ctx context.Context, target string, text normalize.Text, v *Verdict) error {
	var (
		sc       Scores
		modelErr error
		g        errgroup.Group
	)
	g.Go(func() error {
		sc.Repetition = repetition.Score(text.Tokens, e.cfg.NGram)
		return nil
	})
	g.Go(func() error {
		sc.Similarity = e.index.Similarity(target, text.Tokens)
		return nil
	})
	g.Go(func() error {
		p, err := scoreModel(ctx, e.model, text)
		if err != nil {
			modelErr = err
			return nil
		}
		sc.ModelFake, sc.ModelScored = p, true
		return nil
	})
	_ = g.Wait()
	v.Scores = sc

	if modelErr != nil {
		if e.cfg.ModelPolicy == PolicyReject {
			return perr.Wrap(modelErr, perr.ErrorCodeUnavailable, "model unavailable")
		}
		v.warn(WarnModelUnavailable)
	}
	return nil
}

// Decide applies inclusive thresholds and returns fired reasons in the fixed
// order Repetitive, Similar, ModelFake. ModelFake only fires for a scored model
func Decide(s Scores, t Thresholds) []Reason {
	out := []Reason{}
	if s.Repetition >= t.Repetitive {
		out = append(out, ReasonRepetitive)
	}
	if s.Similarity >= t.Similarity {
		out = append(out, ReasonSimilar)
	}
	if s.ModelScored && s.ModelFake >= t.Fake {
		out = append(out, ReasonModelFake)
	}
	return out
}
