package module

import (
	"context"

	"reviewguard/internal/services/reviews/domain"
	rsvc "reviewguard/internal/services/reviews/service"
)

// Ports are the capabilities other modules may look up
type Ports struct {
	Reviews domain.ServicePort
	Model   domain.ModelPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptReviews struct{ svc *rsvc.Svc }

func (a adaptReviews) Evaluate(ctx context.Context, in domain.EvaluateInput) (domain.VerdictOut, error) {
	return a.svc.Evaluate(ctx, in)
}

func (a adaptReviews) Analyze(ctx context.Context, in domain.AnalyzeInput) (domain.VerdictOut, error) {
	return a.svc.Analyze(ctx, in)
}

func (a adaptReviews) Get(ctx context.Context, id string) (domain.Review, error) {
	return a.svc.Get(ctx, id)
}

func (a adaptReviews) Limits(ctx context.Context, in domain.LimitsInput) (domain.LimitsOut, error) {
	return a.svc.Limits(ctx, in)
}

type adaptModel struct{ svc *rsvc.Svc }

func (a adaptModel) Model(ctx context.Context) domain.ModelInfo { return a.svc.Model(ctx) }
