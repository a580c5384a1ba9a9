package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/pkg/auth"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// RateLimit rejects a client IP with 429 once it exceeds the limiter.
// It runs after RealIP, so RemoteAddr already reflects forwarding headers.
func RateLimit(limiter *auth.IPRateLimiter, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("Rate limiter failed", zap.Error(err))
				allowed = true
			}
			if !allowed {
				errorHandler.Handle(w, r, pkgerrors.NewRateLimitError("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
