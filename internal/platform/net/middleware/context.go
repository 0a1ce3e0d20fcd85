package middleware

import (
	"net/http"

	"evidencegate/internal/platform/logger"
	pnet "evidencegate/internal/platform/net"
)

// RequestContext copies the chi request id into the logger context and
// mirrors it in the X-Request-ID response header. Mount after RequestID.
func RequestContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := pnet.RequestID(r.Context())
			if rid != "" {
				w.Header().Set("X-Request-ID", rid)
			}
			ctx := logger.WithRequest(r.Context(), rid, "")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
