package middleware_test

import (
	"compress/flate"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewguard/internal/platform/logger"
	pnet "reviewguard/internal/platform/net"
	"reviewguard/internal/platform/net/middleware"
)

func chain(h http.Handler, mws ...middleware.Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"propagates incoming", "rid-7"},
		{"mints when absent", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen, logged string
			h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = pnet.RequestID(r.Context())
				logged = logger.RequestID(r.Context())
			}), middleware.RequestID())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set("X-Request-Id", tc.incoming)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if seen == "" || seen != logged || rr.Header().Get("X-Request-Id") != seen {
				t.Fatalf("seen=%q logged=%q header=%q", seen, logged, rr.Header().Get("X-Request-Id"))
			}
			if tc.incoming != "" && seen != tc.incoming {
				t.Fatalf("id = %q, want %q", seen, tc.incoming)
			}
		})
	}
}

func TestRealIPAndNoCache(t *testing.T) {
	var remote string
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remote = r.RemoteAddr
	}), middleware.RealIP(), middleware.NoCache())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if remote != "203.0.113.9" {
		t.Fatalf("RemoteAddr = %q", remote)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatal("NoCache header missing")
	}
}

func TestCompress(t *testing.T) {
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"`+strings.Repeat("a", 4<<10)+`"}`)
	}), middleware.Compress(flate.BestSpeed))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rr.Header().Get("Content-Encoding"))
	}
}

func TestHeartbeatAndStripSlashes(t *testing.T) {
	var path string
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusTeapot)
	}), middleware.Heartbeat("/health"), middleware.Timeout(time.Second))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || path != "" {
		t.Fatalf("heartbeat code=%d reached handler=%v", rr.Code, path != "")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reviews", nil))
	if rr.Code != http.StatusTeapot || path != "/reviews" {
		t.Fatalf("passthrough code=%d path=%q", rr.Code, path)
	}
	if middleware.StripSlashes() == nil {
		t.Fatal("nil StripSlashes")
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://shop.test"}}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reviews/evaluate", nil)
	req.Header.Set("Origin", "https://shop.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "https://shop.test" {
		t.Fatalf("allow origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("allow methods = %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}
