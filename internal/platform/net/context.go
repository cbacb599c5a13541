// Package net holds transport-neutral request context and error envelope helpers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"reviewguard/internal/platform/logger"
)

// WithRequest stores reqID where both chi and the request logger find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	return logger.WithRequest(ctx, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return logger.RequestID(ctx)
}
