// Package net carries request scoped identity and the reply envelope shared
// by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	keyTenantID ctxKey = "tenant_id"
	keyActor    ctxKey = "actor"
)

// WithRequest annotates ctx with the request id and tenant id. Empty values
// are not stored.
func WithRequest(ctx context.Context, reqID, tenantID string) context.Context {
	if reqID != "" {
		// chimw.GetReqID reads this key
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if tenantID != "" {
		ctx = context.WithValue(ctx, keyTenantID, tenantID)
	}
	return ctx
}

// WithActor annotates ctx with the submitting principal, used as the
// submitted_by attribution on seal requests
func WithActor(ctx context.Context, actor string) context.Context {
	if actor != "" {
		ctx = context.WithValue(ctx, keyActor, actor)
	}
	return ctx
}

// RequestID returns the request id on ctx, or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// TenantID returns the tenant id on ctx, or ""
func TenantID(ctx context.Context) string {
	v, _ := ctx.Value(keyTenantID).(string)
	return v
}

// Actor returns the submitting principal on ctx, or ""
func Actor(ctx context.Context) string {
	v, _ := ctx.Value(keyActor).(string)
	return v
}
