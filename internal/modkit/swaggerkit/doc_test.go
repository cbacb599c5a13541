package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "reviewguard/internal/platform/net/http"
)

func reset() {
	mu.Lock()
	mutators = nil
	mu.Unlock()
}

func TestSpec_MutatorsAndDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(nil)
	Register(func(spec map[string]any) {
		AddPath(spec, "/reviews/evaluate", "post", map[string]any{
			"summary":   "Evaluate",
			"responses": map[string]any{"200": map[string]any{"description": "ok"}},
		})
		AddPath(spec, "/reviews/evaluate", "options", map[string]any{})
	})

	spec := Spec()
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	node := spec["paths"].(map[string]any)["/reviews/evaluate"].(map[string]any)
	for _, m := range []string{"post", "options"} {
		resps := node[m].(map[string]any)["responses"].(map[string]any)
		if _, ok := resps["500"]; !ok {
			t.Fatalf("%s missing default 500: %v", m, resps)
		}
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatal("missing ErrorResponse schema")
	}
}

func TestMount(t *testing.T) {
	reset()
	tests := []struct {
		enabled bool
		path    string
		want    int
	}{
		{true, "/api/docs/doc.json", http.StatusOK},
		{true, "/api/docs", http.StatusPermanentRedirect},
		{false, "/api/docs/doc.json", http.StatusNotFound},
	}
	for _, tc := range tests {
		r := phttp.NewRouter()
		Mount(r, tc.enabled)
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("enabled=%v %s = %d", tc.enabled, tc.path, rec.Code)
		}
		if tc.want == http.StatusOK {
			var spec map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil || spec["info"] == nil {
				t.Fatalf("doc.json = %q %v", rec.Body.String(), err)
			}
		}
	}
}
