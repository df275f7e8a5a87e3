package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gabomsambo/silce/internal/observability"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per client, with bursts of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		idle:    10 * time.Minute,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	l.sweep(now)
	l.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// sweep drops idle clients. Callers hold mu.
func (l *RateLimiter) sweep(now time.Time) {
	if len(l.clients) < 1024 {
		return
	}
	for k, c := range l.clients {
		if now.Sub(c.seen) > l.idle {
			delete(l.clients, k)
		}
	}
}

// Limit rejects modifying requests over the per-client budget with 429.
// form labels the submission metric.
func (l *RateLimiter) Limit(form string, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isSafeMethod(r.Method) && !l.Allow(clientIP(r)) {
				metrics.Submission(form, "limited")
				w.Header().Set("Retry-After", "60")
				writeError(w, r, http.StatusTooManyRequests, "too many submissions, try again shortly")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
