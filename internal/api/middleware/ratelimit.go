package middleware

import (
	"log"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/lotfolio/lotfolio/internal/api/response"
)

// NewRateLimiter returns a middleware that rejects requests with 429
// once the shared limiter's burst is exhausted.
func NewRateLimiter(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Printf("rate limit exceeded: %s %s", r.Method, r.URL.Path)
				response.RespondError(w, http.StatusTooManyRequests, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
