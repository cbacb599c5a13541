package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"reviewguard/internal/platform/config"
	"reviewguard/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// RatePerMinute throttles each client ip, 0 disables
	RatePerMinute int
	// Timeout bounds a request, default 30s
	Timeout time.Duration
	// Origins for CORS, empty allows none
	Origins []string
	// Slow marks access log lines at warn level
	Slow time.Duration
}

// StackFromConfig reads RATE_LIMIT, REQUEST_TIMEOUT, CORS_ORIGINS and SLOW_REQUEST
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		RatePerMinute: cfg.MayInt("RATE_LIMIT", 100),
		Timeout:       cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		Origins:       cfg.MayCSV("CORS_ORIGINS", nil),
		Slow:          cfg.MayDuration("SLOW_REQUEST", time.Second),
	}
}

// CommonStack returns the per module middleware slice, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: o.Slow,
			Skip: []string{"/api/v1/meta/health", "/api/v1/meta/ready"},
		}),

		// safety
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.RateLimit(middleware.RateLimitOptions{PerMinute: o.RatePerMinute}),

		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
