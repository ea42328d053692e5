package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/notify"
	"github.com/crewdesk/memberd/internal/member/service"
	"github.com/crewdesk/memberd/internal/member/store/drivers/sqlite"
	"github.com/crewdesk/memberd/pkg/cryptox"
	"github.com/crewdesk/memberd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "memberd-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// recordingNotifier captures outgoing mail for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

// failingNotifier simulates a broken mail relay.
type failingNotifier struct{}

func (failingNotifier) Send(context.Context, notify.Message) error {
	return errors.New("relay unreachable")
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newInvitationService(t *testing.T, st *sqlite.Store, n notify.Notifier) *service.InvitationService {
	t.Helper()
	return service.NewInvitationService(st, n, time.Hour, "https://app.example.com")
}

func seedUser(t *testing.T, st *sqlite.Store, tenantID, email string, role domain.Role, perms ...string) domain.User {
	t.Helper()

	u := domain.User{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		Email:       email,
		Role:        role,
		Status:      domain.UserActive,
		Permissions: perms,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

// requireEventNames asserts the events carry exactly the given names, in order.
func requireEventNames(t *testing.T, events []domain.Event, names ...string) {
	t.Helper()

	require.Len(t, events, len(names))
	for i, name := range names {
		require.Equal(t, name, events[i].Name)
	}
}

func TestInviteThenDuplicateConflicts(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	inv, events, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "A@X.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, inv.Status)
	require.Equal(t, "a@x.com", inv.Email, "email is normalized")
	require.NotEmpty(t, inv.Token)

	requireEventNames(t, events, domain.EventInvitationCreated)
	require.Equal(t, "admin-1", events[0].ActorID)
	require.Equal(t, inv.ID, events[0].SubjectID)
	require.Equal(t, "a@x.com", events[0].Meta["email"])

	// Same email again while the first is pending, even with another role.
	_, events, err = svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAdmin,
	})
	require.ErrorIs(t, err, service.ErrInvitationPending)
	require.Empty(t, events, "a failed invite emits nothing")
}

func TestInviteRejectsExistingUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	seedUser(t, st, "t1", "a@x.com", domain.RoleAgent)

	_, _, err := svc.Invite(context.Background(), service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.ErrorIs(t, err, service.ErrUserAlreadyExists)
}

func TestInviteRejectsNonInvitableRole(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})

	for _, role := range []domain.Role{domain.RoleOwner, domain.RoleSuperAdmin} {
		_, _, err := svc.Invite(context.Background(), service.InviteParams{
			TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: role,
		})
		require.ErrorIs(t, err, service.ErrRoleNotInvitable)
	}
}

func TestInviteRejectsWhitespaceListValues(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	// A permission with an embedded space would read back from storage as
	// two separate permissions.
	_, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
		Permissions: []string{"custom reports"},
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, _, err = svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
		TeamIDs: []string{"team one"},
	})
	require.ErrorIs(t, err, service.ErrValidation)

	_, _, err = svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
		Permissions: []string{""},
	})
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestInviteSucceedsWhenNotifierFails(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, failingNotifier{})

	inv, _, err := svc.Invite(context.Background(), service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "t1", inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, got.Status)
}

func TestAcceptFlow(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	inv, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	res, events, err := svc.Accept(ctx, service.AcceptParams{
		Token: inv.Token, FirstName: "Ada", LastName: "L", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.User)
	require.Equal(t, "a@x.com", res.User.Email)
	require.Equal(t, "agent", res.User.Role)

	requireEventNames(t, events, domain.EventInvitationAccepted, domain.EventUserCreated)
	require.Equal(t, inv.ID, events[0].SubjectID)
	require.Equal(t, res.User.ID, events[1].SubjectID)
	require.Empty(t, events[0].ActorID, "accept is unauthenticated")

	got, err := svc.Get(ctx, "t1", inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, got.Status)

	// The spent token redeems to the same generic message as a bogus one,
	// and the replay emits no events.
	res, events, err = svc.Accept(ctx, service.AcceptParams{Token: inv.Token, Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Invalid or expired invitation token", res.Message)
	require.Empty(t, events)

	// The stored credential verifies.
	user, err := st.Users().GetUserByEmail(ctx, "t1", "a@x.com")
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("hunter2hunter2", user.PasswordHash))
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	inv, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	const callers = 8
	results := make([]service.AcceptResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _, errs[i] = svc.Accept(ctx, service.AcceptParams{
				Token: inv.Token, FirstName: "Ada", Password: "hunter2hunter2",
			})
		}()
	}
	wg.Wait()

	var wins int
	for i, res := range results {
		require.NoError(t, errs[i])
		if res.Success {
			wins++
		}
	}
	require.Equal(t, 1, wins, "exactly one accept may win")

	users, err := st.Users().ListUsers(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAcceptJoinsSelectedTeams(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	team := domain.Team{ID: idx.New().String(), TenantID: "t1", Name: "Support"}
	require.NoError(t, st.Teams().CreateTeam(ctx, team))

	inv, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
		TeamIDs:     []string{team.ID, idx.New().String()},
		Permissions: []string{"reports:read"},
	})
	require.NoError(t, err)

	res, _, err := svc.Accept(ctx, service.AcceptParams{Token: inv.Token, Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.True(t, res.Success)

	members, err := st.TeamMembers().ListTeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, res.User.ID, members[0].UserID)

	// Explicit grants from the invitation land on the user.
	user, err := st.Users().GetUserByID(ctx, "t1", res.User.ID)
	require.NoError(t, err)
	require.Contains(t, user.Permissions, "reports:read")
}

func TestResendPreservesTokenAndExtendsExpiry(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	rec := &recordingNotifier{}
	svc := newInvitationService(t, st, rec)
	ctx := context.Background()

	inv, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	resent, events, err := svc.Resend(ctx, "t1", "admin-1", inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.Token, resent.Token)
	require.False(t, resent.ExpiresAt.Before(inv.ExpiresAt))
	requireEventNames(t, events, domain.EventInvitationResent)

	msgs := rec.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, msgs[0].HTML, msgs[1].HTML, "resend delivers the same link")
}

func TestCancelIsNotIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	inv, _, err := svc.Invite(ctx, service.InviteParams{
		TenantID: "t1", InviterID: "admin-1", Email: "a@x.com", Role: domain.RoleAgent,
	})
	require.NoError(t, err)

	events, err := svc.Cancel(ctx, "t1", "admin-1", inv.ID)
	require.NoError(t, err)
	requireEventNames(t, events, domain.EventInvitationCancelled)
	require.Equal(t, inv.ID, events[0].SubjectID)

	events, err = svc.Cancel(ctx, "t1", "admin-1", inv.ID)
	require.ErrorIs(t, err, service.ErrInvitationNotFound)
	require.Empty(t, events)

	_, _, err = svc.Resend(ctx, "t1", "admin-1", inv.ID)
	require.ErrorIs(t, err, service.ErrInvitationNotFound)
}

func TestGetByTokenIsGeneric(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})

	_, err := svc.GetByToken(context.Background(), "no-such-token")
	require.ErrorIs(t, err, service.ErrInvitationNotFound)
}

func TestSweepExpiredNeverErrors(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := newInvitationService(t, st, &recordingNotifier{})
	ctx := context.Background()

	// No expired rows: zero swept.
	require.EqualValues(t, 0, svc.SweepExpired(ctx))

	// Even with the store gone, the sweep reports zero instead of failing.
	require.NoError(t, st.Close())
	require.EqualValues(t, 0, svc.SweepExpired(ctx))
}
