package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/store"
	"github.com/crewdesk/memberd/pkg/idx"
)

// MembershipService manages teams and their members. The invariants it
// holds: team names unique per tenant, at most one default team, and a
// team must be empty and non-default before deletion. Mutating operations
// return the domain events they produced; the caller delivers them.
type MembershipService struct {
	store store.Store
}

func NewMembershipService(st store.Store) *MembershipService {
	return &MembershipService{store: st}
}

type CreateTeamParams struct {
	TenantID  string
	ActorID   string
	Name      string
	Color     string
	IsDefault bool
}

// CreateTeam creates a team. When IsDefault is requested the previous
// default is unset in the same transaction; last writer wins, which is
// fine for an admin-only operation.
func (s *MembershipService) CreateTeam(ctx context.Context, p CreateTeamParams) (domain.Team, []domain.Event, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return domain.Team{}, nil, fmt.Errorf("%w: name", ErrValidation)
	}

	now := time.Now().UTC()
	team := domain.Team{
		ID:        idx.New().String(),
		TenantID:  p.TenantID,
		Name:      name,
		Color:     p.Color,
		IsDefault: p.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var err error
	if p.IsDefault {
		err = s.store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Teams().ClearDefaultTeam(ctx, p.TenantID); err != nil {
				return err
			}
			return tx.Teams().CreateTeam(ctx, team)
		})
	} else {
		err = s.store.Teams().CreateTeam(ctx, team)
	}
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Team{}, nil, ErrTeamNameTaken
		}
		return domain.Team{}, nil, err
	}

	events := []domain.Event{
		domain.NewEvent(domain.EventTeamCreated, p.TenantID, p.ActorID, team.ID, map[string]string{"name": team.Name}),
	}
	return team, events, nil
}

func (s *MembershipService) GetTeam(ctx context.Context, tenantID, teamID string) (domain.Team, error) {
	team, err := s.store.Teams().GetTeam(ctx, tenantID, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Team{}, ErrTeamNotFound
	}
	return team, err
}

func (s *MembershipService) ListTeams(ctx context.Context, tenantID string) ([]domain.Team, error) {
	return s.store.Teams().ListTeams(ctx, tenantID)
}

// DeleteTeam removes an empty, non-default team. The default check runs
// before the member count so the caller always sees the same error for a
// default team, populated or not.
func (s *MembershipService) DeleteTeam(ctx context.Context, tenantID, actorID, teamID string) ([]domain.Event, error) {
	team, err := s.store.Teams().GetTeam(ctx, tenantID, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.IsDefault {
		return nil, ErrTeamIsDefault
	}

	count, err := s.store.TeamMembers().CountTeamMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrTeamNotEmpty
	}

	if err := s.store.Teams().DeleteTeam(ctx, tenantID, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	return []domain.Event{
		domain.NewEvent(domain.EventTeamDeleted, tenantID, actorID, teamID, map[string]string{"name": team.Name}),
	}, nil
}

type AddMemberParams struct {
	TenantID string
	ActorID  string
	TeamID   string
	UserID   string
	Role     domain.TeamRole
	Skills   []string
}

func (s *MembershipService) AddMember(ctx context.Context, p AddMemberParams) (domain.TeamMember, []domain.Event, error) {
	if err := validateListValues("skills", p.Skills); err != nil {
		return domain.TeamMember{}, nil, err
	}
	if _, err := s.store.Teams().GetTeam(ctx, p.TenantID, p.TeamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TeamMember{}, nil, ErrTeamNotFound
		}
		return domain.TeamMember{}, nil, err
	}
	if _, err := s.store.Users().GetUserByID(ctx, p.TenantID, p.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TeamMember{}, nil, ErrUserNotFound
		}
		return domain.TeamMember{}, nil, err
	}

	role := p.Role
	if role == "" {
		role = domain.TeamMemberRole
	}

	m := domain.TeamMember{
		TeamID:   p.TeamID,
		UserID:   p.UserID,
		Role:     role,
		Skills:   p.Skills,
		Active:   true,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.store.TeamMembers().AddTeamMember(ctx, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TeamMember{}, nil, ErrMemberAlreadyExists
		}
		return domain.TeamMember{}, nil, err
	}

	events := []domain.Event{
		domain.NewEvent(domain.EventMemberAdded, p.TenantID, p.ActorID, p.TeamID, map[string]string{"user_id": p.UserID}),
	}
	return m, events, nil
}

func (s *MembershipService) RemoveMember(ctx context.Context, tenantID, actorID, teamID, userID string) ([]domain.Event, error) {
	if _, err := s.store.Teams().GetTeam(ctx, tenantID, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if err := s.store.TeamMembers().RemoveTeamMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return []domain.Event{
		domain.NewEvent(domain.EventMemberRemoved, tenantID, actorID, teamID, map[string]string{"user_id": userID}),
	}, nil
}

func (s *MembershipService) ListMembers(ctx context.Context, tenantID, teamID string) ([]domain.TeamMember, error) {
	if _, err := s.store.Teams().GetTeam(ctx, tenantID, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return s.store.TeamMembers().ListTeamMembers(ctx, teamID)
}
