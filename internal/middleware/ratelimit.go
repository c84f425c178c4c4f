package middleware

import (
	"encoding/json"
	"net/http"

	"susurro/internal/auth"
	"susurro/internal/ratelimit"
)

// RateLimitUser enforces a per-user quota for one endpoint class. It runs
// after RequireAuth so the key can be built from the authenticated user,
// and it attaches the X-RateLimit headers on every response, allowed or
// not. A denied request gets 429 without consuming quota.
func RateLimitUser(limiter *ratelimit.Limiter, policy ratelimit.Policy, endpoint string) func(http.Handler) http.Handler {
	return rateLimit(limiter, policy, func(r *http.Request) string {
		return ratelimit.Key(auth.UserID(r.Context()), endpoint)
	})
}

// RateLimitIP enforces a quota keyed by client IP, for routes that run
// before authentication.
func RateLimitIP(limiter *ratelimit.Limiter, policy ratelimit.Policy, endpoint string) func(http.Handler) http.Handler {
	return rateLimit(limiter, policy, func(r *http.Request) string {
		return ratelimit.Key(RealIP(r), endpoint)
	})
}

func rateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Check(keyFunc(r), policy)
			ratelimit.SetHeaders(w.Header(), policy, result)
			if !result.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
