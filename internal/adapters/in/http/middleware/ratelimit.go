// internal/adapters/in/http/middleware/ratelimit.go
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows max requests per window for each client IP.
// The token bucket refills at max/window and holds up to max tokens.
type RateLimiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window:   window,
		max:      max,
		now:      time.Now,
		visitors: map[string]*visitor{},
	}
}

// Allow consumes one token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.gc(now)
	v, ok := rl.visitors[ip]
	if !ok {
		every := rl.window / time.Duration(rl.max)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.max)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// gc drops visitors idle for a full window; their bucket is full again anyway.
func (rl *RateLimiter) gc(now time.Time) {
	if now.Sub(rl.lastGC) < rl.window {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.window {
			delete(rl.visitors, ip)
		}
	}
	rl.lastGC = now
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}
