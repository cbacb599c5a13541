package middleware

import "time"

// WithClock pins the limiter clock in tests
func (o RateLimitOptions) WithClock(now func() time.Time) RateLimitOptions {
	o.now = now
	return o
}
