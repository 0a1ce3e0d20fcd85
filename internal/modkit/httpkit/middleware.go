package httpkit

import (
	"net/http"
	"time"

	"evidencegate/internal/platform/config"
	"evidencegate/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack. ActorHeader is off unless configured; its
// value is taken as is, so only name a header a trusted proxy sets and
// strips from client requests.
type StackOptions struct {
	CORSOrigins  []string
	TenantHeader string
	ActorHeader  string
	Slow         time.Duration
}

// StackFromConfig reads CORE_API_* values
func StackFromConfig(cfg config.Conf) StackOptions {
	c := cfg.Prefix("CORE_API_")
	return StackOptions{
		CORSOrigins:  c.MayCSV("CORS_ORIGINS", []string{"*"}),
		TenantHeader: c.MayString("TENANT_HEADER", middleware.DefaultTenantHeader),
		ActorHeader:  c.MayString("ACTOR_HEADER", ""),
		Slow:         c.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// CommonStack returns the API middleware stack. The tenant header is
// optional here; write routes add RequireTenant.
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	header := o.TenantHeader
	if header == "" {
		header = middleware.DefaultTenantHeader
	}
	extra := []string{header}
	if o.ActorHeader != "" {
		extra = append(extra, o.ActorHeader)
	}
	stack := middleware.Defaults()
	return append(stack,
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}, extra...),
		middleware.Tenant(middleware.TenantOptions{Header: header, ActorHeader: o.ActorHeader}),
		middleware.AccessLog(middleware.AccessLogOptions{
			Slow: o.Slow,
			Skip: []string{"/api/v1/meta/health"},
		}),
	)
}

// RequireTenant guards routes that need a tenant
func RequireTenant() func(http.Handler) http.Handler { return middleware.RequireTenant }
