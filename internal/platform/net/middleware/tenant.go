package middleware

import (
	"net/http"
	"strings"
	"unicode/utf8"

	perr "evidencegate/internal/platform/errors"
	"evidencegate/internal/platform/logger"
	pnet "evidencegate/internal/platform/net"
	phttp "evidencegate/internal/platform/net/http"
)

// DefaultTenantHeader carries the tenant id when none is configured
const DefaultTenantHeader = "X-Tenant-ID"

const maxTenantLen = 128

// TenantOptions configures Tenant
type TenantOptions struct {
	Header string
	// Required rejects requests without the header with 401
	Required bool
	// ActorHeader, when set, names a header copied into the context as the
	// submitting principal
	ActorHeader string
}

// Tenant reads the tenant id from a header and stores it on the request and
// logger contexts. Ids are trimmed, at most 128 bytes of visible ASCII.
func Tenant(o TenantOptions) func(http.Handler) http.Handler {
	header := o.Header
	if header == "" {
		header = DefaultTenantHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := strings.TrimSpace(r.Header.Get(header))
			if err := checkTenant(tid, header, o.Required); err != nil {
				phttp.RespondError(w, r, err)
				return
			}
			ctx := pnet.WithRequest(r.Context(), "", tid)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), tid)
			if o.ActorHeader != "" {
				ctx = pnet.WithActor(ctx, strings.TrimSpace(r.Header.Get(o.ActorHeader)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func checkTenant(tid, header string, required bool) error {
	if tid == "" {
		if required {
			return perr.WithField(perr.New(perr.ErrorCodeUnauthorized, "tenant header is required"), header)
		}
		return nil
	}
	if len(tid) > maxTenantLen || !utf8.ValidString(tid) {
		return perr.WithField(perr.InvalidArgf("tenant id is malformed"), header)
	}
	for i := 0; i < len(tid); i++ {
		if c := tid[i]; c <= ' ' || c > '~' {
			return perr.WithField(perr.InvalidArgf("tenant id is malformed"), header)
		}
	}
	return nil
}

// RequireTenant rejects requests that reach it without a tenant on the
// context. Use it on routes that write, behind an optional Tenant.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pnet.TenantID(r.Context()) == "" {
			phttp.RespondError(w, r, perr.New(perr.ErrorCodeUnauthorized, "tenant header is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
