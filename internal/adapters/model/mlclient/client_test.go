package mlclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewguard/internal/core/engine"
	"reviewguard/internal/core/normalize"
)

func TestClient_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Text != "great value" {
			t.Errorf("text = %q", req.Text)
		}
		_ = json.NewEncoder(w).Encode(PredictResponse{FakeProbability: 0.82, ModelVersion: "v3"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 0)
	p, err := c.Score(context.Background(), normalize.Text{Value: "great value"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != 0.82 {
		t.Fatalf("score = %v", p)
	}
}

func TestClient_ErrorsAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Score(context.Background(), normalize.Text{Value: "x"})
	if !errors.Is(err, engine.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
	if err := New(srv.URL, 0).Ping(context.Background()); !errors.Is(err, engine.ErrModelUnavailable) {
		t.Fatalf("Ping err = %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 20*time.Millisecond).Score(context.Background(), normalize.Text{Value: "x"})
	if !errors.Is(err, engine.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model_version":"2025-06-01"}`))
	}))
	defer srv.Close()

	v, err := New(srv.URL, 0).Health(context.Background())
	if err != nil || v != "2025-06-01" {
		t.Fatalf("Health = %q, %v", v, err)
	}
}

func TestClient_HealthMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	v, err := c.Health(context.Background())
	if !errors.Is(err, engine.ErrModelUnavailable) || v != "" {
		t.Fatalf("Health = %q, %v", v, err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("Ping should fail on a malformed health body")
	}
}
