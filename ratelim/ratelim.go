// Package ratelim provides per-client-IP token-bucket rate limiting, used on
// the credential endpoints (register, login).
package ratelim

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/mealfeed-go/apperror"
	"github.com/user/mealfeed-go/auth"
)

// RateLimiter keeps one token bucket per client IP. Relies on
// middleware.RealIP having normalized RemoteAddr when behind a proxy.
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing `limit` events per second with
// the given burst per client IP.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.visitors[ip]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors[ip] = limiter

	// Drop the bucket after 10 minutes so the map does not grow without bound.
	go func() {
		time.Sleep(10 * time.Minute)
		rl.mu.Lock()
		delete(rl.visitors, ip)
		rl.mu.Unlock()
	}()

	return limiter
}

// Limit is a chi-compatible middleware enforcing the per-IP limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(r.RemoteAddr)
		if !limiter.Allow() {
			auth.WriteJSON(w, http.StatusTooManyRequests, apperror.ErrorResponse{Error: "too many requests, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
