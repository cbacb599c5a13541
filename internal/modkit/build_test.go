package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewguard/internal/modkit/httpkit"
	phttp "reviewguard/internal/platform/net/http"
)

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("defaults = %+v", b)
	}
	var r httpkit.Router
	if b.Subrouter(r) != r {
		t.Fatal("default subrouter should be identity")
	}
	b.Register(r)
}

type ports struct{ Kind string }

func TestBuild_Options(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(tag string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, r)
			})
		}
	}
	src := []func(http.Handler) http.Handler{mw("a"), mw("b")}

	b := Build(
		WithName("reviews"),
		WithPrefix("/reviews"),
		WithMiddlewares(src...),
		WithPorts(ports{Kind: "bayes"}),
		WithSubrouter(func(r httpkit.Router) httpkit.Router {
			r.Use(mw("sub"))
			return r
		}),
		WithRegister(func(r httpkit.Router) {
			r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		}),
	)
	src[0] = mw("mutated")

	if b.Name != "reviews" || b.Prefix != "/reviews" || b.Ports.(ports).Kind != "bayes" {
		t.Fatalf("built = %+v", b)
	}

	r := phttp.NewRouter()
	r.Route(b.Prefix, func(rr httpkit.Router) {
		rr.Use(b.Mw...)
		b.Register(b.Subrouter(rr))
	})
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reviews/ping", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d", rec.Code)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "sub" {
		t.Fatalf("middleware order = %v", order)
	}
}
