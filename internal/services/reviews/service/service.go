// Package service runs review evaluation and records the outcome
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
	"reviewguard/internal/core/ratelimit"
	"reviewguard/internal/modkit/repokit"
	perr "reviewguard/internal/platform/errors"
	"reviewguard/internal/platform/logger"
	"reviewguard/internal/services/reviews/domain"
	"reviewguard/internal/services/reviews/metrics"
	"reviewguard/internal/services/reviews/repo"
)

// WarnPersistFailed is attached when a best-effort write failed
const WarnPersistFailed = "persist_failed"

// Service defines the reviews service contract
type Service interface {
	domain.ServicePort
	domain.ModelPort
}

// AuditWriter receives one row per decided submission
type AuditWriter interface {
	Write(ctx context.Context, xs []repo.VerdictRow) error
}

// ModelProbe reports the model version or why it cannot score
type ModelProbe interface {
	Health(ctx context.Context) (string, error)
}

// Svc implements the reviews service
type Svc struct {
	eng     *engine.Engine
	counter ratelimit.Counter

	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	audit  AuditWriter

	modelKind string
	probe     ModelProbe

	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a Svc
type Option func(*Svc)

// WithStore persists reviews and verdicts to postgres
func WithStore(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) Option {
	return func(s *Svc) {
		if db == nil || binder == nil {
			return
		}
		s.db, s.binder = db, binder
	}
}

// WithAudit sends every verdict to w
func WithAudit(w AuditWriter) Option { return func(s *Svc) { s.audit = w } }

// WithModel names the model kind and how to probe it
func WithModel(kind string, p ModelProbe) Option {
	return func(s *Svc) { s.modelKind, s.probe = kind, p }
}

// WithMetrics records verdicts on m
func WithMetrics(m *metrics.Metrics) Option { return func(s *Svc) { s.metrics = m } }

// WithLogger overrides the component logger
func WithLogger(l *logger.Logger) Option { return func(s *Svc) { s.log = l } }

// WithClock overrides the time source
func WithClock(now func() time.Time) Option { return func(s *Svc) { s.now = now } }

// WithIDs overrides the id generator
func WithIDs(f func() string) Option { return func(s *Svc) { s.newID = f } }

// New constructs a reviews service around eng
func New(eng *engine.Engine, opts ...Option) *Svc {
	if eng == nil {
		panic("reviews.Service requires a non nil engine")
	}
	s := &Svc{
		eng:       eng,
		modelKind: "none",
		log:       logger.Named("reviews"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if c, ok := eng.Gate().(ratelimit.Counter); ok {
		s.counter = c
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Evaluate decides one submission and records it best-effort
func (s *Svc) Evaluate(ctx context.Context, in domain.EvaluateInput) (domain.VerdictOut, error) {
	start := time.Now()
	// the day bucket always follows the server clock
	sub := engine.Submission{
		SubmitterID: in.SubmitterID,
		ContactID:   in.ContactID,
		TargetID:    in.TargetID,
		Text:        in.Text,
		SubmittedAt: s.now(),
	}

	v, err := s.eng.Evaluate(ctx, sub)
	if err != nil {
		logger.C(ctx).Warn().Err(err).
			Str("target_id", sub.TargetID).
			Str("stage", string(v.Stage)).
			Msg("evaluate failed")
		return domain.VerdictOut{}, err
	}

	out := domain.VerdictOut{Verdict: v}
	out.ID = s.record(ctx, sub, &out.Verdict)
	s.metrics.Observe(out.Verdict, time.Since(start))

	ev := logger.C(ctx).Debug()
	if !out.Accepted {
		ev = logger.C(ctx).Info()
	}
	ev.Str("target_id", sub.TargetID).
		Bool("accepted", out.Accepted).
		Strs("reasons", reasons(out.Reasons)).
		Strs("warnings", out.Warnings).
		Float64("repetition", out.Scores.Repetition).
		Float64("similarity", out.Scores.Similarity).
		Float64("model_fake", out.Scores.ModelFake).
		Msg("review decided")
	return out, nil
}

// record persists the verdict and, when accepted, the review.
// Failures are logged and surfaced as a verdict warning
func (s *Svc) record(ctx context.Context, sub engine.Submission, v *engine.Verdict) string {
	at := s.now().UTC()
	row := repo.VerdictRow{
		ID:          s.newID(),
		TargetID:    sub.TargetID,
		SubmitterID: sub.SubmitterID,
		ContactID:   sub.ContactID,
		Verdict:     *v,
		CreatedAt:   at,
	}

	failed := false
	if s.db != nil {
		var reviewID string
		if v.Accepted {
			reviewID = s.newID()
		}
		err := s.db.Tx(ctx, func(q repokit.Queryer) error {
			r := s.binder.Bind(q)
			if reviewID != "" {
				if err := r.InsertReview(ctx, repo.ReviewRow{
					ID:          reviewID,
					TargetID:    sub.TargetID,
					SubmitterID: sub.SubmitterID,
					ContactID:   sub.ContactID,
					TextRaw:     sub.Text,
					TextNorm:    v.Text.Value,
					Scores:      v.Scores,
					CreatedAt:   at,
				}); err != nil {
					return err
				}
			}
			x := row
			x.ReviewID = reviewID
			return r.InsertVerdict(ctx, x)
		})
		if err != nil {
			s.log.Error().Err(err).Str("target_id", sub.TargetID).Msg("persist verdict failed")
			s.metrics.Failed("pg")
			failed = true
		} else {
			row.ReviewID = reviewID
		}
	}

	if s.audit != nil {
		if err := s.audit.Write(ctx, []repo.VerdictRow{row}); err != nil {
			s.log.Error().Err(err).Str("target_id", sub.TargetID).Msg("audit verdict failed")
			s.metrics.Failed("clickhouse")
			failed = true
		}
	}

	if failed {
		v.Warnings = append(v.Warnings, WarnPersistFailed)
	}
	return row.ReviewID
}

// Analyze scores text without consuming limits or updating the index
func (s *Svc) Analyze(ctx context.Context, in domain.AnalyzeInput) (domain.VerdictOut, error) {
	v, err := s.eng.Analyze(ctx, in.TargetID, in.Text)
	if err != nil {
		return domain.VerdictOut{}, err
	}
	return domain.VerdictOut{Verdict: v}, nil
}

// Get loads a stored review
func (s *Svc) Get(ctx context.Context, id string) (domain.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Review{}, perr.WithField(perr.InvalidArgf("review id %q is not a uuid", id), "id")
	}
	if s.db == nil {
		return domain.Review{}, perr.NotFoundf("review %s not found", id)
	}
	r, err := s.binder.Bind(s.db).GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	return domain.Review{
		ID:          r.ID,
		TargetID:    r.TargetID,
		SubmitterID: r.SubmitterID,
		ContactID:   r.ContactID,
		Text:        r.TextRaw,
		Canonical:   r.TextNorm,
		Scores:      r.Scores,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// Limits reports today's counters for the given identities
func (s *Svc) Limits(ctx context.Context, in domain.LimitsInput) (domain.LimitsOut, error) {
	if in.SubmitterID == "" && in.ContactID == "" {
		return domain.LimitsOut{}, perr.InvalidArgf("submitter_id or contact_id is required")
	}
	if s.counter == nil {
		return domain.LimitsOut{}, perr.Unavailablef("rate limiter does not expose counters")
	}

	day := ratelimit.DayOf(s.now())
	lim := s.eng.Config().Limits
	out := domain.LimitsOut{Day: string(day)}

	if in.SubmitterID != "" {
		u, err := s.usage(ctx, ratelimit.KindSubmitter, in.SubmitterID, lim.PerSubmitter, day)
		if err != nil {
			return domain.LimitsOut{}, err
		}
		out.Submitter = &u
	}
	if in.ContactID != "" {
		u, err := s.usage(ctx, ratelimit.KindContact, in.ContactID, lim.PerContact, day)
		if err != nil {
			return domain.LimitsOut{}, err
		}
		out.Contact = &u
	}
	return out, nil
}

func (s *Svc) usage(ctx context.Context, k ratelimit.Kind, id string, max int, day ratelimit.Day) (domain.LimitUsage, error) {
	n, err := s.counter.Count(ctx, k, id, day)
	if err != nil {
		return domain.LimitUsage{}, err
	}
	u := domain.LimitUsage{Identity: id, Used: n, Max: max, Remaining: -1}
	if max > 0 {
		u.Remaining = max - n
		if u.Remaining < 0 {
			u.Remaining = 0
		}
	}
	return u, nil
}

// Model reports the configured model and whether it can score right now
func (s *Svc) Model(ctx context.Context) domain.ModelInfo {
	info := domain.ModelInfo{
		Kind:   s.modelKind,
		Policy: string(s.eng.Config().ModelPolicy),
	}
	if s.probe == nil {
		info.Error = engine.ErrModelUnavailable.Error()
		return info
	}
	v, err := s.probe.Health(ctx)
	info.Version = v
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Ready = true
	return info
}

// Warm replays up to perTarget stored reviews per target into the
// similarity index, oldest first
func (s *Svc) Warm(ctx context.Context, perTarget int) (int, error) {
	if s.db == nil || perTarget <= 0 {
		return 0, nil
	}
	rows, err := s.binder.Bind(s.db).RecentByTarget(ctx, perTarget)
	if err != nil {
		return 0, err
	}

	byTarget := make(map[string][]normalize.Text)
	order := make([]string, 0)
	for _, r := range rows {
		if _, ok := byTarget[r.TargetID]; !ok {
			order = append(order, r.TargetID)
		}
		byTarget[r.TargetID] = append(byTarget[r.TargetID], normalize.Text{
			Value:  r.TextNorm,
			Tokens: normalize.Tokenize(r.TextNorm),
		})
	}

	idx := s.eng.Index()
	for _, t := range order {
		if err := idx.Warm(t, byTarget[t]); err != nil {
			return 0, err
		}
	}
	s.metrics.Warmed(len(rows))
	s.log.Info().Int("reviews", len(rows)).Int("targets", len(order)).Msg("similarity index warmed")
	return len(rows), nil
}

// Sweep drops rate counters older than keepDays
func (s *Svc) Sweep(ctx context.Context, keepDays int) (int64, error) {
	since := ratelimit.DayOf(s.now().AddDate(0, 0, -keepDays))
	switch g := s.eng.Gate().(type) {
	case interface {
		Sweep(context.Context, ratelimit.Day) (int64, error)
	}:
		return g.Sweep(ctx, since)
	case interface{ Sweep(ratelimit.Day) int }:
		return int64(g.Sweep(since)), nil
	}
	return 0, nil
}

func reasons(rs []engine.Reason) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
