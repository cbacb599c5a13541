// Package http provides http transport for reviews
package http

import (
	stdhttp "net/http"

	"reviewguard/internal/modkit/httpkit"
	"reviewguard/internal/services/reviews/domain"
)

// Service is the subset of the reviews service the handlers call
type Service interface {
	domain.ServicePort
}

// Register mounts review endpoints on the given router
func Register(r httpkit.Router, s Service) {
	h := &handlers{svc: s}

	// full pipeline, consumes rate limits
	httpkit.PostJSON[domain.EvaluateInput](r, "/evaluate", h.evaluate)

	// dry run scoring
	httpkit.PostJSON[domain.AnalyzeInput](r, "/analyze", h.analyze)

	httpkit.Get(r, "/limits", h.limits)
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct{ svc Service }

// swagger:route POST /reviews/evaluate Reviews reviewsEvaluate
// @Summary Evaluate a review submission
// @Description Rejections are returned as verdict data with status 200
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body domain.EvaluateInput true "Submission"
// @Success 200 {object} domain.VerdictOut "decided"
// @Failure 400 {object} httpkit.Envelope "invalid input"
// @Failure 503 {object} httpkit.Envelope "model or limiter unavailable"
// @Router /reviews/evaluate [post]
func (h *handlers) evaluate(r *stdhttp.Request, in domain.EvaluateInput) (any, error) {
	return h.svc.Evaluate(r.Context(), in)
}

// swagger:route POST /reviews/analyze Reviews reviewsAnalyze
// @Summary Score text against a target without side effects
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body domain.AnalyzeInput true "Text"
// @Success 200 {object} domain.VerdictOut "scored"
// @Router /reviews/analyze [post]
func (h *handlers) analyze(r *stdhttp.Request, in domain.AnalyzeInput) (any, error) {
	return h.svc.Analyze(r.Context(), in)
}

// swagger:route GET /reviews/limits Reviews reviewsLimits
// @Summary Today's submission counters
// @Tags Reviews
// @Produce json
// @Param submitter_id query string false "Submitter id"
// @Param contact_id query string false "Contact id"
// @Success 200 {object} domain.LimitsOut "ok"
// @Router /reviews/limits [get]
func (h *handlers) limits(r *stdhttp.Request) (any, error) {
	return h.svc.Limits(r.Context(), domain.LimitsInput{
		SubmitterID: httpkit.Query(r, "submitter_id"),
		ContactID:   httpkit.Query(r, "contact_id"),
	})
}

// swagger:route GET /reviews/{id} Reviews reviewsGet
// @Summary Stored review by id
// @Tags Reviews
// @Produce json
// @Param id path string true "Review id"
// @Success 200 {object} domain.Review "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /reviews/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "id"))
}
