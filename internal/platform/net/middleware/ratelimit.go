package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	perr "reviewguard/internal/platform/errors"
	pnet "reviewguard/internal/platform/net"
)

// RateLimitOptions configures per-client request throttling
type RateLimitOptions struct {
	// PerMinute is the sustained rate per client ip, <= 0 disables the limiter
	PerMinute int
	// Burst defaults to PerMinute
	Burst int
	// IdleTTL evicts clients not seen for this long, default 10m
	IdleTTL time.Duration

	now func() time.Time
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

type clientLimiter struct {
	mu       sync.Mutex
	every    rate.Limit
	burst    int
	ttl      time.Duration
	visitors map[string]*visitor
	swept    time.Time
}

func (c *clientLimiter) allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.swept) >= c.ttl {
		for k, v := range c.visitors {
			if now.Sub(v.seen) >= c.ttl {
				delete(c.visitors, k)
			}
		}
		c.swept = now
	}

	v, ok := c.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(c.every, c.burst)}
		c.visitors[key] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

func (c *clientLimiter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visitors)
}

// RateLimit throttles each client ip with a token bucket and answers 429
// with a Retry-After hint once the bucket is empty
func RateLimit(o RateLimitOptions) func(http.Handler) http.Handler {
	if o.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if o.Burst <= 0 {
		o.Burst = o.PerMinute
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = 10 * time.Minute
	}
	now := o.now
	if now == nil {
		now = time.Now
	}

	cl := &clientLimiter{
		every:    rate.Every(time.Minute / time.Duration(o.PerMinute)),
		burst:    o.Burst,
		ttl:      o.IdleTTL,
		visitors: make(map[string]*visitor),
		swept:    now(),
	}
	retry := strconv.Itoa(int(math.Ceil(60 / float64(o.PerMinute))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cl.allow(clientIP(r), now()) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", retry)
			status, body := pnet.Error(
				perr.Newf(perr.ErrorCodeTooManyRequests, "rate limit of %d requests per minute exceeded", o.PerMinute),
				pnet.RequestID(r.Context()),
			)
			writeWire(w, status, body)
		})
	}
}

// clientIP prefers the host part of RemoteAddr, which RealIP has already rewritten
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
