package store

import "context"

type tenantKey struct{}

// WithTenant scopes ctx to a tenant; Tx applies it as app.tenant_id
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantID returns the tenant on ctx
func TenantID(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(tenantKey{}).(string)
	return s, s != ""
}
