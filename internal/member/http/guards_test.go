package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/internal/member/store/drivers/sqlite"
	"github.com/crewdesk/memberd/pkg/httpx"
	"github.com/crewdesk/memberd/pkg/idx"
)

func newGuardStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func callGuard(mw httpx.Middleware, userID, tenantID, role string) int {
	var hit bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := context.Background()
	ctx = context.WithValue(ctx, httpx.CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, httpx.CtxKeyTenantID, tenantID)
	ctx = context.WithValue(ctx, httpx.CtxKeyRole, role)

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if hit {
		return http.StatusNoContent
	}
	return rec.Code
}

func TestRequirePermissionRoleClaim(t *testing.T) {
	t.Parallel()

	perms := service.NewPermissionService(newGuardStore(t))
	guard := RequirePermission(perms, "invitations:manage")

	// The role claim alone is enough; the caller need not exist in the
	// user table.
	require.Equal(t, http.StatusNoContent, callGuard(guard, "ghost", "t1", "admin"))
	require.Equal(t, http.StatusNoContent, callGuard(guard, "ghost", "t1", "owner"))
	require.Equal(t, http.StatusForbidden, callGuard(guard, "ghost", "t1", "viewer"))
	require.Equal(t, http.StatusForbidden, callGuard(guard, "ghost", "t1", "not-a-role"))
}

func TestRequirePermissionExplicitGrant(t *testing.T) {
	t.Parallel()

	st := newGuardStore(t)
	perms := service.NewPermissionService(st)

	u := domain.User{
		ID:          idx.New().String(),
		TenantID:    "t1",
		Email:       "viewer@example.com",
		Role:        domain.RoleViewer,
		Status:      domain.UserActive,
		Permissions: []string{"reports:read"},
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))

	granted := RequirePermission(perms, "reports:read")
	require.Equal(t, http.StatusNoContent, callGuard(granted, u.ID, "t1", "viewer"))

	// Same user, same grant, wrong tenant scope.
	require.Equal(t, http.StatusForbidden, callGuard(granted, u.ID, "t2", "viewer"))
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	guard := RequireRole(domain.RoleAdmin)

	require.Equal(t, http.StatusNoContent, callGuard(guard, "u1", "t1", "admin"))
	require.Equal(t, http.StatusNoContent, callGuard(guard, "u1", "t1", "owner"))
	require.Equal(t, http.StatusNoContent, callGuard(guard, "u1", "t1", "super_admin"))
	require.Equal(t, http.StatusForbidden, callGuard(guard, "u1", "t1", "agent"))
	require.Equal(t, http.StatusForbidden, callGuard(guard, "u1", "t1", ""))
}
