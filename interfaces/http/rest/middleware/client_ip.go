package middleware

import (
	"net"
	"net/http"

	"github.com/jameslaisianto/Back-end-web-dev/pkg/common"
)

// ClientIP stores the caller's address in the request context so calls to
// other services can forward it. It runs after RealIP.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
