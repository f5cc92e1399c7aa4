package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sajilopatro/patro-data/internal/api/respond"
)

// --------------------------------------------------------------------------
// Request timing middleware
// --------------------------------------------------------------------------

// TimingMiddleware reports handler latency in the X-Process-Time header.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ms := float64(time.Since(start).Microseconds()) / 1000.0
		w.Header().Set("X-Process-Time", strconv.FormatFloat(ms, 'f', 2, 64)+"ms")
	})
}

// --------------------------------------------------------------------------
// Rate limiting middleware (per-IP token bucket with idle eviction)
// --------------------------------------------------------------------------

// visitorIdleAfter is how long a client bucket survives without traffic
// before a sweep may drop it.
const visitorIdleAfter = 10 * time.Minute

// visitor is one client's token bucket plus the last time it was used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	nextSweep time.Time
}

// newIPLimiter sizes per-client buckets from the configured window. The
// calendar API is read-only GET traffic, so the burst allowance is a
// quarter of the window: enough for a page load, not a crawl.
func newIPLimiter(requestsPerWindow int, window time.Duration) *ipLimiter {
	burst := requestsPerWindow / 4
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:    rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// allow consumes one token for ip, creating its bucket on first sight.
// Stale buckets are swept lazily so the map cannot grow without bound.
func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdleAfter {
				delete(l.visitors, k)
			}
		}
		l.nextSweep = now.Add(visitorIdleAfter)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// RateLimitMiddleware throttles by client IP. Mounted on the /api/v1
// group only; health probes and the docs UI stay unthrottled.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration) func(http.Handler) http.Handler {
	limiter := newIPLimiter(requestsPerWindow, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				respond.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
