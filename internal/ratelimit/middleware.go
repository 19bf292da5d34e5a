package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kuitang/noteful/internal/auth"
)

// RetryAfterSeconds is the Retry-After value sent with a 429.
const RetryAfterSeconds = 1

// Middleware enforces the per-user limit. It must run after the auth
// middleware; requests without a caller in the context pass through
// untouched.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := auth.CallerFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID := caller.ID.Hex()
			if !limiter.Allow(userID) {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"message": "Too Many Requests",
					"status":  http.StatusTooManyRequests,
				})
				return
			}

			remaining := int(limiter.Tokens(userID))
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
