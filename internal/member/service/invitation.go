package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/notify"
	"github.com/crewdesk/memberd/internal/member/store"
	"github.com/crewdesk/memberd/pkg/cryptox"
	"github.com/crewdesk/memberd/pkg/idx"
	"github.com/crewdesk/memberd/pkg/slogx"
)

// DefaultInviteTTL is how long an invitation stays redeemable unless
// configured otherwise.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Public messages for the unauthenticated accept/validate path. Every
// failure reason except "user already exists" collapses into the generic
// token message so callers cannot probe which emails are invited.
const (
	msgInvalidToken = "Invalid or expired invitation token"
	msgUserExists   = "A user with this email already exists"
	msgAccepted     = "Invitation accepted"
)

// Arbiter outcomes inside the accept transaction. Both force a rollback.
var (
	errTokenSpent = errors.New("invitation no longer pending")
	errUserRaced  = errors.New("user created concurrently")
)

// InvitationService drives the invitation state machine: pending may move
// to accepted, cancelled, or expired, and nothing leaves a terminal state.
// The conditional updates in the store are the arbiters under concurrency;
// this layer shapes errors and side effects. Mutating operations return the
// domain events they produced; the caller delivers them.
type InvitationService struct {
	store    store.Store
	notifier notify.Notifier
	ttl      time.Duration
	baseURL  string
}

func NewInvitationService(st store.Store, n notify.Notifier, ttl time.Duration, baseURL string) *InvitationService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InvitationService{
		store:    st,
		notifier: n,
		ttl:      ttl,
		baseURL:  baseURL,
	}
}

type InviteParams struct {
	TenantID      string
	InviterID     string
	Email         string
	Role          domain.Role
	CustomMessage string
	TeamIDs       []string
	Permissions   []string
}

// Invite creates a pending invitation and dispatches the email. The
// returned invitation includes the raw token; it is for the inviter-facing
// response only and never travels to the invitee endpoints.
func (s *InvitationService) Invite(ctx context.Context, p InviteParams) (domain.Invitation, []domain.Event, error) {
	email := normalizeEmail(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invitation{}, nil, fmt.Errorf("%w: email", ErrValidation)
	}
	if !p.Role.Invitable() {
		return domain.Invitation{}, nil, ErrRoleNotInvitable
	}
	if err := validateListValues("permissions", p.Permissions); err != nil {
		return domain.Invitation{}, nil, err
	}
	if err := validateListValues("team_ids", p.TeamIDs); err != nil {
		return domain.Invitation{}, nil, err
	}

	_, err := s.store.Users().GetUserByEmail(ctx, p.TenantID, email)
	if err == nil {
		return domain.Invitation{}, nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, nil, err
	}

	_, err = s.store.Invitations().GetPendingInvitationByEmail(ctx, p.TenantID, email)
	if err == nil {
		return domain.Invitation{}, nil, ErrInvitationPending
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, nil, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Invitation{}, nil, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:            idx.New().String(),
		TenantID:      p.TenantID,
		InviterID:     p.InviterID,
		Email:         email,
		Role:          p.Role,
		Token:         token,
		Status:        domain.InvitationPending,
		CustomMessage: p.CustomMessage,
		TeamIDs:       p.TeamIDs,
		Permissions:   p.Permissions,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The partial unique index backstops the pre-check under concurrency.
	if err := s.store.Invitations().CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Invitation{}, nil, ErrInvitationPending
		}
		return domain.Invitation{}, nil, err
	}

	s.deliver(ctx, inv)
	events := []domain.Event{
		domain.NewEvent(domain.EventInvitationCreated, inv.TenantID, p.InviterID, inv.ID, map[string]string{
			"email": inv.Email,
			"role":  inv.Role.String(),
		}),
	}
	return inv, events, nil
}

// Resend pushes the expiry forward and re-dispatches the email. The token
// is not rotated: the link already sitting in the invitee's inbox keeps
// working.
func (s *InvitationService) Resend(ctx context.Context, tenantID, actorID, id string) (domain.Invitation, []domain.Event, error) {
	inv, err := s.store.Invitations().GetInvitation(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, nil, ErrInvitationNotFound
		}
		return domain.Invitation{}, nil, err
	}
	if inv.Status != domain.InvitationPending {
		return domain.Invitation{}, nil, ErrInvitationNotFound
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	if err := s.store.Invitations().ExtendInvitation(ctx, tenantID, id, expiresAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, nil, ErrInvitationNotFound
		}
		return domain.Invitation{}, nil, err
	}
	inv.ExpiresAt = expiresAt

	s.deliver(ctx, inv)
	events := []domain.Event{
		domain.NewEvent(domain.EventInvitationResent, tenantID, actorID, id, nil),
	}
	return inv, events, nil
}

// Cancel transitions a pending invitation to cancelled. Cancelling twice
// fails the second time: the record is no longer pending.
func (s *InvitationService) Cancel(ctx context.Context, tenantID, actorID, id string) ([]domain.Event, error) {
	if err := s.store.Invitations().CancelInvitation(ctx, tenantID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return []domain.Event{
		domain.NewEvent(domain.EventInvitationCancelled, tenantID, actorID, id, nil),
	}, nil
}

type AcceptParams struct {
	Token     string
	FirstName string
	LastName  string
	Password  string
}

// AcceptResult is a structured outcome instead of an error: both failure
// modes (spent token, existing user) are expected and frequent, and the
// caller needs to tell them apart without exception control flow.
type AcceptResult struct {
	Success bool
	Message string
	User    *domain.PublicUser
}

// Accept redeems a token: it creates the user, marks the invitation
// accepted, and joins any teams the inviter selected. Under concurrent
// accepts of the same token the conditional status update lets exactly one
// caller through. Events are returned only on success; failed redemptions
// leave no audit trail beyond the request log.
func (s *InvitationService) Accept(ctx context.Context, p AcceptParams) (AcceptResult, []domain.Event, error) {
	now := time.Now().UTC()

	inv, err := s.store.Invitations().GetPendingInvitationByToken(ctx, p.Token, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AcceptResult{Message: msgInvalidToken}, nil, nil
		}
		return AcceptResult{}, nil, err
	}

	// Checked after token validity so a bad token never reveals whether the
	// email is taken.
	_, err = s.store.Users().GetUserByEmail(ctx, inv.TenantID, inv.Email)
	if err == nil {
		return AcceptResult{Message: msgUserExists}, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return AcceptResult{}, nil, err
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return AcceptResult{}, nil, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		TenantID:     inv.TenantID,
		Email:        inv.Email,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Role:         inv.Role,
		Status:       domain.UserActive,
		Permissions:  inv.Permissions,
		PasswordHash: hash,
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().AcceptInvitation(ctx, inv.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errTokenSpent
			}
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return errUserRaced
			}
			return err
		}
		for _, teamID := range inv.TeamIDs {
			if _, err := tx.Teams().GetTeam(ctx, inv.TenantID, teamID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// The team was deleted after the invite went out. Skip it
					// rather than fail the whole accept.
					continue
				}
				return err
			}
			m := domain.TeamMember{
				TeamID:   teamID,
				UserID:   user.ID,
				Role:     domain.TeamMemberRole,
				Active:   true,
				JoinedAt: now,
			}
			if err := tx.TeamMembers().AddTeamMember(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, errTokenSpent):
		return AcceptResult{Message: msgInvalidToken}, nil, nil
	case errors.Is(err, errUserRaced):
		return AcceptResult{Message: msgUserExists}, nil, nil
	case err != nil:
		return AcceptResult{}, nil, err
	}

	events := []domain.Event{
		domain.NewEvent(domain.EventInvitationAccepted, inv.TenantID, "", inv.ID, map[string]string{"email": inv.Email}),
		domain.NewEvent(domain.EventUserCreated, inv.TenantID, "", user.ID, map[string]string{"role": user.Role.String()}),
	}

	pub := user.Public()
	return AcceptResult{Success: true, Message: msgAccepted, User: &pub}, events, nil
}

// GetByToken resolves a token for the read-only validate endpoint. Every
// failure reason collapses into ErrInvitationNotFound; the HTTP layer
// renders the one generic message.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	inv, err := s.store.Invitations().GetPendingInvitationByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}
	return inv, nil
}

func (s *InvitationService) Get(ctx context.Context, tenantID, id string) (domain.Invitation, error) {
	inv, err := s.store.Invitations().GetInvitation(ctx, tenantID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	return inv, err
}

func (s *InvitationService) List(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	return s.store.Invitations().ListInvitations(ctx, tenantID)
}

// SweepExpired bulk-expires overdue pending invitations and reports the
// count. It never returns an error: it runs from an unattended schedule,
// so a persistence hiccup is logged and the next tick tries again.
func (s *InvitationService) SweepExpired(ctx context.Context) int64 {
	count, err := s.store.Invitations().ExpireInvitations(ctx, time.Now().UTC())
	if err != nil {
		slogx.FromContext(ctx).Error("invitation sweep failed", slog.Any("error", err))
		return 0
	}
	return count
}

// deliver sends the invitation email best-effort. A bounced email never
// rolls back the invitation.
func (s *InvitationService) deliver(ctx context.Context, inv domain.Invitation) {
	msg, err := notify.RenderInvitation(inv, s.baseURL)
	if err == nil {
		err = s.notifier.Send(ctx, msg)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("invitation email delivery failed",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validateListValues rejects entries that would not survive the
// space-delimited list encoding in the store: a value containing
// whitespace would read back as several values.
func validateListValues(field string, values []string) error {
	for _, v := range values {
		if v == "" || strings.ContainsFunc(v, unicode.IsSpace) {
			return fmt.Errorf("%w: %s", ErrValidation, field)
		}
	}
	return nil
}
