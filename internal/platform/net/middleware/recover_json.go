package middleware

import (
	"net/http"
	"runtime/debug"

	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/logger"
	phttp "evidencegate/internal/platform/net/http"
)

// RecoverJSON turns a panic into a JSON 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("panic recovered")
			phttp.RespondError(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
