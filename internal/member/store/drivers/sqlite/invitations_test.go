package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/store"
	"github.com/crewdesk/memberd/internal/member/store/drivers/sqlite"
	"github.com/crewdesk/memberd/pkg/cryptox"
	"github.com/crewdesk/memberd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func pendingInvitation(tenantID, email string) domain.Invitation {
	return domain.Invitation{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		InviterID: "admin-1",
		Email:     email,
		Role:      domain.RoleAgent,
		Token:     cryptox.MustGenerateToken(cryptox.TokenSize256),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestPendingEmailUniquePerTenant(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	first := pendingInvitation("t1", "a@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, first))

	// Second pending invitation for the same (tenant, email) hits the
	// partial unique index.
	dup := pendingInvitation("t1", "a@x.com")
	err := st.Invitations().CreateInvitation(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Other tenants are unaffected.
	require.NoError(t, st.Invitations().CreateInvitation(ctx, pendingInvitation("t2", "a@x.com")))

	// Once the first is cancelled, the email can be re-invited.
	require.NoError(t, st.Invitations().CancelInvitation(ctx, "t1", first.ID))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, pendingInvitation("t1", "a@x.com")))
}

func TestTokenUniqueAcrossTenants(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	inv := pendingInvitation("t1", "a@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	clash := pendingInvitation("t2", "b@x.com")
	clash.Token = inv.Token
	err := st.Invitations().CreateInvitation(ctx, clash)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAcceptInvitationIsConditional(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	inv := pendingInvitation("t1", "a@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	now := time.Now()
	require.NoError(t, st.Invitations().AcceptInvitation(ctx, inv.ID, now))

	// A second accept loses the conditional update.
	err := st.Invitations().AcceptInvitation(ctx, inv.ID, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := st.Invitations().GetInvitation(ctx, "t1", inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, got.Status)
	require.NotNil(t, got.AcceptedAt)
}

func TestCancelTwiceReturnsNotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	inv := pendingInvitation("t1", "a@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	require.NoError(t, st.Invitations().CancelInvitation(ctx, "t1", inv.ID))
	err := st.Invitations().CancelInvitation(ctx, "t1", inv.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetPendingByTokenExcludesExpired(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	inv := pendingInvitation("t1", "a@x.com")
	inv.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	_, err := st.Invitations().GetPendingInvitationByToken(ctx, inv.Token, time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExpireInvitationsSweepsOnlyOverdue(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	overdue := pendingInvitation("t1", "old@x.com")
	overdue.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, st.Invitations().CreateInvitation(ctx, overdue))

	fresh := pendingInvitation("t1", "new@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, fresh))

	n, err := st.Invitations().ExpireInvitations(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Idempotent: a second sweep finds nothing.
	n, err = st.Invitations().ExpireInvitations(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	got, err := st.Invitations().GetInvitation(ctx, "t1", fresh.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, got.Status)
}

func TestExtendInvitationPreservesToken(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	inv := pendingInvitation("t1", "a@x.com")
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	later := time.Now().Add(14 * 24 * time.Hour)
	require.NoError(t, st.Invitations().ExtendInvitation(ctx, "t1", inv.ID, later))

	got, err := st.Invitations().GetInvitation(ctx, "t1", inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.Token, got.Token)
	require.WithinDuration(t, later, got.ExpiresAt, time.Second)
}
