package store

import (
	"context"
	"errors"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement it. Sub-repositories keep concerns tidy and let
// services depend on exactly what they touch.
type Store interface {
	Invitations() Invitations
	Users() Users
	Teams() Teams
	TeamMembers() TeamMembers

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. fn must use the
	// repositories of the Tx it receives, never the outer Store.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Invitations() Invitations
	Users() Users
	Teams() Teams
	TeamMembers() TeamMembers

	Commit() error
	Rollback() error
}

// Invitations persists invitation records. Every state transition is a
// conditional update keyed on status=pending; callers learn about lost
// races through ErrNotFound, never by overwriting a terminal state.
type Invitations interface {
	// CreateInvitation inserts a new pending invitation. Returns
	// ErrAlreadyExists when the tenant already has a pending invitation for
	// the email, or on a token collision.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitation returns an invitation by tenant and id.
	GetInvitation(ctx context.Context, tenantID, id string) (domain.Invitation, error)

	// GetPendingInvitationByEmail returns the tenant's pending invitation
	// for an email, if any.
	GetPendingInvitationByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error)

	// GetPendingInvitationByToken returns the invitation for a raw token
	// where status is pending and the expiry is in the future.
	GetPendingInvitationByToken(ctx context.Context, token string, now time.Time) (domain.Invitation, error)

	// ListInvitations returns all invitations for a tenant, newest first.
	ListInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error)

	// ExtendInvitation moves the expiry forward while the invitation is
	// still pending. ErrNotFound when it is not.
	ExtendInvitation(ctx context.Context, tenantID, id string, expiresAt time.Time) error

	// CancelInvitation transitions pending to cancelled. ErrNotFound when
	// the invitation is missing or no longer pending, including a second
	// cancel of the same invitation.
	CancelInvitation(ctx context.Context, tenantID, id string) error

	// AcceptInvitation transitions pending to accepted. The conditional
	// update is the arbiter for concurrent accepts: exactly one caller
	// succeeds, the rest get ErrNotFound.
	AcceptInvitation(ctx context.Context, id string, acceptedAt time.Time) error

	// ExpireInvitations bulk-transitions pending invitations whose expiry
	// has passed and reports how many changed.
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

type Users interface {
	// CreateUser inserts a new user (id provided by the app via ULID).
	// ErrAlreadyExists when the tenant already has this email.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by tenant and id.
	GetUserByID(ctx context.Context, tenantID, id string) (domain.User, error)

	// GetUserByEmail returns a user by tenant and email.
	GetUserByEmail(ctx context.Context, tenantID, email string) (domain.User, error)

	// ListUsers returns all users for a tenant, newest first.
	ListUsers(ctx context.Context, tenantID string) ([]domain.User, error)
}

type Teams interface {
	// CreateTeam inserts a team. ErrAlreadyExists when the tenant already
	// has a team with that name.
	CreateTeam(ctx context.Context, t domain.Team) error

	// GetTeam returns a team by tenant and id.
	GetTeam(ctx context.Context, tenantID, id string) (domain.Team, error)

	// ListTeams returns all teams for a tenant, newest first.
	ListTeams(ctx context.Context, tenantID string) ([]domain.Team, error)

	// ClearDefaultTeam unsets IsDefault on any team of the tenant. Used
	// inside the transaction that promotes a new default.
	ClearDefaultTeam(ctx context.Context, tenantID string) error

	// DeleteTeam removes a team. ErrNotFound when absent. The service
	// checks the default/non-empty invariants before calling this.
	DeleteTeam(ctx context.Context, tenantID, id string) error
}

type TeamMembers interface {
	// AddTeamMember inserts a membership row. ErrAlreadyExists when the
	// user is already on the team.
	AddTeamMember(ctx context.Context, m domain.TeamMember) error

	// RemoveTeamMember deletes a membership row. ErrNotFound when absent.
	RemoveTeamMember(ctx context.Context, teamID, userID string) error

	// ListTeamMembers returns the members of a team ordered by join time.
	ListTeamMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)

	// CountTeamMembers returns the number of members on a team.
	CountTeamMembers(ctx context.Context, teamID string) (int, error)
}
