package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ipThrottle is a token-bucket limiter keyed by client IP. Buckets refill
// continuously at rate tokens/sec up to burst; stale buckets are evicted
// lazily on the request path, so no background goroutine is needed.
type ipThrottle struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rate      float64
	burst     float64
	lastSweep time.Time
}

type tokenBucket struct {
	tokens  float64
	touched time.Time
}

const bucketIdleEviction = 10 * time.Minute

func newIPThrottle(rate float64, burst int) *ipThrottle {
	return &ipThrottle{
		buckets:   make(map[string]*tokenBucket),
		rate:      rate,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// take consumes one token for ip. It returns whether the request is allowed
// and how many whole tokens remain.
func (t *ipThrottle) take(ip string) (allowed bool, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.sweep(now)

	b, ok := t.buckets[ip]
	if !ok {
		b = &tokenBucket{tokens: t.burst}
		t.buckets[ip] = b
	} else {
		b.tokens += now.Sub(b.touched).Seconds() * t.rate
		if b.tokens > t.burst {
			b.tokens = t.burst
		}
	}
	b.touched = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

// sweep drops buckets idle long enough to be full again. Runs at most once
// per eviction window; callers hold the mutex.
func (t *ipThrottle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < bucketIdleEviction {
		return
	}
	cutoff := now.Add(-bucketIdleEviction)
	for ip, b := range t.buckets {
		if b.touched.Before(cutoff) {
			delete(t.buckets, ip)
		}
	}
	t.lastSweep = now
}

// RateLimit rejects requests over the per-IP budget with 429. Responses carry
// X-RateLimit-Limit / X-RateLimit-Remaining so API clients can pace
// themselves, and rejected requests get a Retry-After hint.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	throttle := newIPThrottle(rate, burst)
	limitHeader := strconv.Itoa(burst)
	retryAfter := strconv.Itoa(int(1/rate) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}

			allowed, remaining := throttle.take(ip)
			w.Header().Set("X-RateLimit-Limit", limitHeader)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
