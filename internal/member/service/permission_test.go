package service_test

import (
	"context"
	"testing"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/stretchr/testify/require"
)

func TestHasPermissionRoleShortCircuits(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := service.NewPermissionService(st)
	ctx := context.Background()

	owner := seedUser(t, st, "t1", "owner@x.com", domain.RoleOwner)
	super := seedUser(t, st, "t1", "super@x.com", domain.RoleSuperAdmin)
	viewer := seedUser(t, st, "t1", "viewer@x.com", domain.RoleViewer)

	// Owner passes anything, including names nobody defined.
	require.True(t, svc.HasPermission(ctx, "t1", owner.ID, "invitations:manage"))
	require.True(t, svc.HasPermission(ctx, "t1", owner.ID, "made:up"))

	// super_admin covers admin- and agent-gated permissions, nothing else.
	require.True(t, svc.HasPermission(ctx, "t1", super.ID, "invitations:manage"))
	require.True(t, svc.HasPermission(ctx, "t1", super.ID, "conversations:write"))
	require.False(t, svc.HasPermission(ctx, "t1", super.ID, "made:up"))

	require.False(t, svc.HasPermission(ctx, "t1", viewer.ID, "invitations:manage"))
	require.True(t, svc.HasPermission(ctx, "t1", viewer.ID, "conversations:read"))
}

func TestHasPermissionExplicitGrants(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := service.NewPermissionService(st)
	ctx := context.Background()

	agent := seedUser(t, st, "t1", "agent@x.com", domain.RoleAgent, "reports:read")

	require.True(t, svc.HasPermission(ctx, "t1", agent.ID, "reports:read"), "explicit grant")
	require.True(t, svc.HasPermission(ctx, "t1", agent.ID, "conversations:write"), "role default")
	require.False(t, svc.HasPermission(ctx, "t1", agent.ID, "teams:manage"))
}

func TestHasPermissionFailsClosed(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := service.NewPermissionService(st)
	ctx := context.Background()

	agent := seedUser(t, st, "t1", "agent@x.com", domain.RoleAgent)

	require.False(t, svc.HasPermission(ctx, "t1", "ghost", "conversations:read"), "missing user")
	require.False(t, svc.HasPermission(ctx, "t2", agent.ID, "conversations:read"), "wrong tenant")
	require.False(t, svc.HasPermission(ctx, "t1", agent.ID, "unknown:permission"))
}

func TestEffectivePermissionsUnion(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := service.NewPermissionService(st)
	ctx := context.Background()

	agent := seedUser(t, st, "t1", "agent@x.com", domain.RoleAgent, "reports:read", "conversations:read")

	perms, err := svc.EffectivePermissions(ctx, "t1", agent.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"reports:read", "conversations:read", "conversations:write"}, perms)

	_, err = svc.EffectivePermissions(ctx, "t1", "ghost")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
