package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyTenantID ctxKey = "tenant_id"
	CtxKeyRole     ctxKey = "role"
)

// UserID returns the authenticated actor id, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUserID).(string)
	return v
}

// TenantID returns the actor's tenant, or "" when unauthenticated.
func TenantID(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyTenantID).(string)
	return v
}

// Role returns the actor's role claim, or "" when unauthenticated.
func Role(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRole).(string)
	return v
}
