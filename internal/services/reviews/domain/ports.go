package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Evaluate(ctx context.Context, in EvaluateInput) (VerdictOut, error)
	Analyze(ctx context.Context, in AnalyzeInput) (VerdictOut, error)
	Get(ctx context.Context, id string) (Review, error)
	Limits(ctx context.Context, in LimitsInput) (LimitsOut, error)
}

// ModelPort reports on the model for readiness and meta endpoints
type ModelPort interface {
	Model(ctx context.Context) ModelInfo
}
