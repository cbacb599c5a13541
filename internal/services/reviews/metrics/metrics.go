// Package metrics exposes prometheus instruments for review evaluation
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewguard/internal/core/engine"
)

// Metrics holds the review instruments and the registry they live in
type Metrics struct {
	reg *prometheus.Registry

	Verdicts       *prometheus.CounterVec
	Reasons        *prometheus.CounterVec
	Warnings       *prometheus.CounterVec
	EvalDuration   prometheus.Histogram
	ModelScore     prometheus.Histogram
	PersistFailed  *prometheus.CounterVec
	IndexedReviews prometheus.Counter
}

// New registers the instruments on a fresh registry along with the go and
// process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewguard_verdicts_total",
			Help: "Evaluated submissions by outcome",
		}, []string{"outcome"}),
		Reasons: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewguard_rejection_reasons_total",
			Help: "Rejection reasons fired, one submission may fire several",
		}, []string{"reason"}),
		Warnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewguard_verdict_warnings_total",
			Help: "Warnings attached to verdicts",
		}, []string{"warning"}),
		EvalDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewguard_evaluate_duration_seconds",
			Help:    "Time to decide one submission",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ModelScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewguard_model_fake_probability",
			Help:    "Distribution of model fake probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		PersistFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewguard_persist_failures_total",
			Help: "Best-effort writes that failed",
		}, []string{"sink"}),
		IndexedReviews: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewguard_index_warm_reviews_total",
			Help: "Stored reviews replayed into the similarity index",
		}),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Observe records one verdict
func (m *Metrics) Observe(v engine.Verdict, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if v.Accepted {
		outcome = "accepted"
	}
	m.Verdicts.WithLabelValues(outcome).Inc()
	for _, r := range v.Reasons {
		m.Reasons.WithLabelValues(reasonLabel(r)).Inc()
	}
	for _, w := range v.Warnings {
		m.Warnings.WithLabelValues(w).Inc()
	}
	if v.Scores.ModelScored {
		m.ModelScore.Observe(v.Scores.ModelFake)
	}
	m.EvalDuration.Observe(took.Seconds())
}

// Failed counts a failed best-effort write to sink
func (m *Metrics) Failed(sink string) {
	if m == nil {
		return
	}
	m.PersistFailed.WithLabelValues(sink).Inc()
}

// Warmed counts reviews replayed into the index
func (m *Metrics) Warmed(n int) {
	if m == nil {
		return
	}
	m.IndexedReviews.Add(float64(n))
}

// reasonLabel keeps label cardinality fixed; RateLimited carries its dimension
func reasonLabel(r engine.Reason) string { return string(r) }
