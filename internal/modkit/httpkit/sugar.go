package httpkit

import (
	"net/http"
	"strings"

	phttp "reviewguard/internal/platform/net/http"
)

// Get registers a body-less handler wrapped in the envelope
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// PostJSON registers a handler whose body is bound and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}

func trim(s string) string { return strings.TrimSpace(s) }
