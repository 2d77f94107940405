package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a simple token-bucket limiter per key (IP by default).
type RateLimiter struct {
	rate    time.Duration
	burst   int
	buckets map[string]*bucket
	mu      sync.Mutex
	keyFunc func(*http.Request) string
	now     func() time.Time
	// OnLimit renders a rejected request. Defaults to a plain 429.
	OnLimit func(w http.ResponseWriter, r *http.Request)
	calls   int
}

type bucket struct {
	tokens int
	last   time.Time
}

// sweepEvery bounds how often idle buckets are dropped.
const sweepEvery = 1024

// NewIPRateLimit returns a limiter allowing burst requests, refilling one token per rate.
func NewIPRateLimit(rate time.Duration, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucket),
		keyFunc: IPFromRequest,
		now:     time.Now,
	}
}

// Limit enforces the limit on one handler.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.keyFunc(r)) {
			w.Header().Set("Retry-After", retryAfter(l.rate))
			if l.OnLimit != nil {
				l.OnLimit(w, r)
				return
			}
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}
	if refill := int(now.Sub(b.last) / l.rate); refill > 0 {
		b.tokens = min(l.burst, b.tokens+refill)
		b.last = b.last.Add(time.Duration(refill) * l.rate)
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that would be full again.
func (l *RateLimiter) sweep(now time.Time) {
	full := time.Duration(l.burst) * l.rate
	for k, b := range l.buckets {
		if now.Sub(b.last) >= full {
			delete(l.buckets, k)
		}
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
