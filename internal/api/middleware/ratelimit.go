package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL    = 10 * time.Minute
	pruneInterval = time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// RateLimiter is a per-IP token bucket limiter. Idle visitors are pruned
// while handling requests.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*limiterEntry
	lastPrune time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per IP
// with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*limiterEntry),
	}
}

// RateLimit applies a simple IP-based token bucket limiter. A non-positive
// rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewRateLimiter(rps, burst).Middleware
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow reports whether a request from ip may proceed.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) >= pruneInterval {
		for k, v := range l.visitors {
			if now.Sub(v.last) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	le, ok := l.visitors[ip]
	if !ok {
		le = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = le
	}
	le.last = now
	return le.limiter.AllowN(now, 1)
}

// Visitors returns the number of tracked IPs.
func (l *RateLimiter) Visitors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
