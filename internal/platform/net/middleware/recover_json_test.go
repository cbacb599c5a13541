package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "reviewguard/internal/platform/errors"
	"reviewguard/internal/platform/net/middleware"
)

func TestRecoverJSON_PanicBecomes500Envelope(t *testing.T) {
	h := middleware.RequestID()(middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("scorer exploded")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		StatusCode int            `json:"status_code"`
		Code       perr.ErrorCode `json:"code"`
		RequestID  string         `json:"request_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.StatusCode != 500 || body.Code != perr.ErrorCodePanic || body.RequestID == "" {
		t.Fatalf("body = %+v", body)
	}
	if rr.Header().Get("X-Request-ID") != body.RequestID {
		t.Fatalf("request id header mismatch")
	}
}

func TestRecoverJSON_AbortHandlerIsRethrown(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if recover() != http.ErrAbortHandler {
			t.Fatal("expected ErrAbortHandler to propagate")
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
