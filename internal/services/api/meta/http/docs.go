package http

import "reviewguard/internal/modkit/swaggerkit"

func init() {
	swaggerkit.Register(func(spec map[string]any) {
		for path, summary := range map[string]string{
			"/meta/health":  "Health check",
			"/meta/ready":   "Readiness probe with dependency checks",
			"/meta/version": "Build and version info",
			"/meta/service": "Service info and uptime",
			"/meta/model":   "Fake-probability model status",
		} {
			swaggerkit.AddPath(spec, path, "get", map[string]any{
				"tags":      []any{"Meta"},
				"summary":   summary,
				"responses": map[string]any{"200": map[string]any{"description": "ok"}},
			})
		}
	})
}
