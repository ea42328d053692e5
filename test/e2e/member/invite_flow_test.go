package member_test

import (
	"net/http"
	"testing"

	"github.com/crewdesk/memberd/pkg/membersdk"
	"github.com/stretchr/testify/require"
)

// TestInviteAcceptFlow walks the happy path end to end: invite, validate
// the token, accept, and confirm the token is spent afterwards.
func TestInviteAcceptFlow(t *testing.T) {
	baseURL, cleanup := setupMemberContainer(t)
	defer cleanup()

	ctx := t.Context()
	admin := adminClient(t, baseURL)
	public := publicClient(baseURL)

	inv, err := admin.CreateInvitation(ctx, membersdk.CreateInvitationRequest{
		Email:         "agent@example.com",
		Role:          "agent",
		CustomMessage: "Welcome to the support crew",
	})
	require.NoError(t, err)
	require.Equal(t, "pending", inv.Status)
	require.NotEmpty(t, inv.Token, "the create response carries the token")

	// A second invitation for the same email conflicts while the first is
	// still pending.
	_, err = admin.CreateInvitation(ctx, membersdk.CreateInvitationRequest{
		Email: "agent@example.com",
		Role:  "admin",
	})
	requireAPIError(t, err, http.StatusConflict)

	// The invitee validates the token before signing up.
	validated, err := public.ValidateInvitation(ctx, inv.Token)
	require.NoError(t, err)
	require.True(t, validated.Valid)
	require.Equal(t, "agent@example.com", validated.Email)
	require.Equal(t, "agent", validated.Role)

	accepted, err := public.AcceptInvitation(ctx, membersdk.AcceptInvitationRequest{
		Token:     inv.Token,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct-horse-battery",
	})
	require.NoError(t, err)
	require.True(t, accepted.Success)
	require.NotNil(t, accepted.User)
	require.Equal(t, "agent@example.com", accepted.User.Email)
	require.Equal(t, "agent", accepted.User.Role)

	// The token is spent; a replay gets the generic failure.
	replayed, err := public.AcceptInvitation(ctx, membersdk.AcceptInvitationRequest{
		Token:    inv.Token,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.False(t, replayed.Success)
	require.Equal(t, "Invalid or expired invitation token", replayed.Message)

	// The admin listing shows the accepted invitation, without the token.
	invs, err := admin.ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	require.Equal(t, "accepted", invs[0].Status)
	require.Empty(t, invs[0].Token)
}

func TestResendAndCancel(t *testing.T) {
	baseURL, cleanup := setupMemberContainer(t)
	defer cleanup()

	ctx := t.Context()
	admin := adminClient(t, baseURL)

	inv, err := admin.CreateInvitation(ctx, membersdk.CreateInvitationRequest{
		Email: "agent@example.com",
		Role:  "agent",
	})
	require.NoError(t, err)

	resent, err := admin.ResendInvitation(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.Token, resent.Token, "resend keeps the token")
	require.False(t, resent.ExpiresAt.Before(inv.ExpiresAt))

	require.NoError(t, admin.CancelInvitation(ctx, inv.ID))

	// The record is no longer pending, so a second cancel and a resend
	// both come back 404.
	requireAPIError(t, admin.CancelInvitation(ctx, inv.ID), http.StatusNotFound)
	_, err = admin.ResendInvitation(ctx, inv.ID)
	requireAPIError(t, err, http.StatusNotFound)
}

func TestInvitationAuthz(t *testing.T) {
	baseURL, cleanup := setupMemberContainer(t)
	defer cleanup()

	ctx := t.Context()

	// No token at all.
	_, err := publicClient(baseURL).ListInvitations(ctx)
	requireAPIError(t, err, http.StatusUnauthorized)

	// A viewer's role defaults don't include invitations:manage, and the
	// user has no explicit grants.
	viewer := membersdk.NewClient(baseURL, mintToken(t, "user-viewer-1", "viewer"))
	_, err = viewer.CreateInvitation(ctx, membersdk.CreateInvitationRequest{
		Email: "x@example.com",
		Role:  "agent",
	})
	requireAPIError(t, err, http.StatusForbidden)

	// super_admin satisfies admin-gated permissions.
	super := membersdk.NewClient(baseURL, mintToken(t, "user-super-1", "super_admin"))
	_, err = super.CreateInvitation(ctx, membersdk.CreateInvitationRequest{
		Email: "x@example.com",
		Role:  "agent",
	})
	require.NoError(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupMemberContainer(t)
	defer cleanup()

	health, err := publicClient(baseURL).Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)
}
