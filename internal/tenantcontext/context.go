package tenantcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

const (
	tenantIDKey  contextKey = "tenant_id"
	sessionIDKey contextKey = "session_id"
)

// WithTenantID records the authenticated tenant on the request context.
func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	if tenantID == 0 {
		return ctx
	}
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext returns the authenticated tenant, if any.
func TenantIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	value, ok := ctx.Value(tenantIDKey).(snowflake.ID)
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}

// WithSessionID records the session that authenticated the request.
func WithSessionID(ctx context.Context, sessionID snowflake.ID) context.Context {
	if sessionID == 0 {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext returns the authenticating session, if any.
func SessionIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	value, ok := ctx.Value(sessionIDKey).(snowflake.ID)
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}
