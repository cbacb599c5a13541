package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/modkit/swaggerkit"
	perr "reviewguard/internal/platform/errors"
	phttp "reviewguard/internal/platform/net/http"
	"reviewguard/internal/services/reviews/domain"
)

type fakeSvc struct {
	evalIn   domain.EvaluateInput
	limitsIn domain.LimitsInput
	getID    string
	evalErr  error
}

func (f *fakeSvc) Evaluate(_ context.Context, in domain.EvaluateInput) (domain.VerdictOut, error) {
	f.evalIn = in
	if f.evalErr != nil {
		return domain.VerdictOut{}, f.evalErr
	}
	return domain.VerdictOut{ID: "r1", Verdict: engine.Verdict{Accepted: true, Stage: engine.StageDecided}}, nil
}

func (f *fakeSvc) Analyze(_ context.Context, in domain.AnalyzeInput) (domain.VerdictOut, error) {
	return domain.VerdictOut{Verdict: engine.Verdict{Reasons: []engine.Reason{engine.ReasonSimilar}}}, nil
}

func (f *fakeSvc) Get(_ context.Context, id string) (domain.Review, error) {
	f.getID = id
	return domain.Review{}, perr.NotFoundf("review %s not found", id)
}

func (f *fakeSvc) Limits(_ context.Context, in domain.LimitsInput) (domain.LimitsOut, error) {
	f.limitsIn = in
	return domain.LimitsOut{Day: "2025-09-03"}, nil
}

func mount(s Service) phttp.Router {
	r := phttp.NewRouter()
	r.Route("/reviews", func(rr phttp.Router) { Register(rr, s) })
	return r
}

func call(r phttp.Router, method, path, body string) (int, phttp.Envelope) {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env phttp.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestEvaluate(t *testing.T) {
	f := &fakeSvc{}
	r := mount(f)

	code, env := call(r, stdhttp.MethodPost, "/reviews/evaluate",
		`{"submitter_id":"u1","contact_id":"c@x.io","target_id":"t1","text":"hello"}`)
	if code != stdhttp.StatusOK {
		t.Fatalf("code = %d %+v", code, env)
	}
	if f.evalIn.TargetID != "t1" || f.evalIn.ContactID != "c@x.io" {
		t.Fatalf("input = %+v", f.evalIn)
	}
	data := env.Data.(map[string]any)
	if data["id"] != "r1" || data["accepted"] != true || data["stage"] != "decided" {
		t.Fatalf("data = %v", data)
	}
}

func TestEvaluate_ErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing submitter", `{"contact_id":"c","target_id":"t","text":"x"}`, nil, stdhttp.StatusBadRequest},
		{"unknown field", `{"submitter_id":"u","contact_id":"c","target_id":"t","text":"x","rating":5}`, nil, stdhttp.StatusBadRequest},
		{"client timestamp", `{"submitter_id":"u","contact_id":"c","target_id":"t","text":"x","submitted_at":"2030-01-01T00:00:00Z"}`, nil, stdhttp.StatusBadRequest},
		{"model unavailable", `{"submitter_id":"u","contact_id":"c","target_id":"t","text":"x"}`,
			perr.Wrap(engine.ErrModelUnavailable, perr.ErrorCodeUnavailable, "model unavailable"), stdhttp.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := call(mount(&fakeSvc{evalErr: tc.err}), stdhttp.MethodPost, "/reviews/evaluate", tc.body)
			if code != tc.want || env.Error == "" {
				t.Fatalf("code = %d %+v", code, env)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	code, env := call(mount(&fakeSvc{}), stdhttp.MethodPost, "/reviews/analyze", `{"target_id":"t","text":"x"}`)
	reasons := env.Data.(map[string]any)["reasons"].([]any)
	if code != stdhttp.StatusOK || len(reasons) != 1 || reasons[0] != "Similar" {
		t.Fatalf("code = %d %+v", code, env)
	}
}

func TestLimitsAndGet(t *testing.T) {
	f := &fakeSvc{}
	r := mount(f)

	if code, _ := call(r, stdhttp.MethodGet, "/reviews/limits?submitter_id=u1&contact_id=%20c@x.io%20", ""); code != stdhttp.StatusOK {
		t.Fatalf("limits code = %d", code)
	}
	if f.limitsIn.SubmitterID != "u1" || f.limitsIn.ContactID != "c@x.io" {
		t.Fatalf("limits input = %+v", f.limitsIn)
	}

	code, env := call(r, stdhttp.MethodGet, "/reviews/abc", "")
	if code != stdhttp.StatusNotFound || f.getID != "abc" || env.Code != perr.ErrorCodeNotFound {
		t.Fatalf("get = %d %+v id=%q", code, env, f.getID)
	}
}

func TestDocsRegistered(t *testing.T) {
	paths := swaggerkit.Spec()["paths"].(map[string]any)
	for _, p := range []string{"/reviews/evaluate", "/reviews/analyze", "/reviews/limits", "/reviews/{id}"} {
		if _, found := paths[p]; !found {
			t.Fatalf("spec missing %s", p)
		}
	}
}
