package http

import "reviewguard/internal/modkit/swaggerkit"

func init() { swaggerkit.Register(docs) }

func jsonBody(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		schema["required"] = req
	}
	return map[string]any{
		"required": true,
		"content":  map[string]any{"application/json": map[string]any{"schema": schema}},
	}
}

func str() map[string]any { return map[string]any{"type": "string"} }

func ok(desc string) map[string]any { return map[string]any{"description": desc} }

func docs(spec map[string]any) {
	submission := jsonBody(map[string]any{
		"submitter_id": str(),
		"contact_id":   str(),
		"target_id":    str(),
		"text":         str(),
	}, "submitter_id", "contact_id", "target_id")

	swaggerkit.AddPath(spec, "/reviews/evaluate", "post", map[string]any{
		"tags":        []any{"Reviews"},
		"summary":     "Evaluate a review submission",
		"description": "Rejections are verdict data with status 200",
		"requestBody": submission,
		"responses": map[string]any{
			"200": ok("decided"),
			"400": swaggerkit.ErrorRef("invalid input"),
			"503": swaggerkit.ErrorRef("model or limiter unavailable"),
		},
	})
	swaggerkit.AddPath(spec, "/reviews/analyze", "post", map[string]any{
		"tags":        []any{"Reviews"},
		"summary":     "Score text against a target without side effects",
		"requestBody": jsonBody(map[string]any{"target_id": str(), "text": str()}),
		"responses":   map[string]any{"200": ok("scored")},
	})
	swaggerkit.AddPath(spec, "/reviews/limits", "get", map[string]any{
		"tags":    []any{"Reviews"},
		"summary": "Today's submission counters",
		"parameters": []any{
			map[string]any{"name": "submitter_id", "in": "query", "schema": str()},
			map[string]any{"name": "contact_id", "in": "query", "schema": str()},
		},
		"responses": map[string]any{"200": ok("ok"), "400": swaggerkit.ErrorRef("no identity given")},
	})
	swaggerkit.AddPath(spec, "/reviews/{id}", "get", map[string]any{
		"tags":    []any{"Reviews"},
		"summary": "Stored review by id",
		"parameters": []any{
			map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string", "format": "uuid"}},
		},
		"responses": map[string]any{"200": ok("ok"), "404": swaggerkit.ErrorRef("not found")},
	})
}
