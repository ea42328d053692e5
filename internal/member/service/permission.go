package service

import (
	"context"
	"errors"
	"slices"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/store"
)

// PermissionService resolves a user's effective permissions from their
// role and explicit grants. It fails closed: a missing user, an unknown
// role, or an unknown permission name all resolve to false, never to an
// error, because the callers are authorization guards.
type PermissionService struct {
	store store.Store
}

func NewPermissionService(st store.Store) *PermissionService {
	return &PermissionService{store: st}
}

// HasPermission reports whether the user may exercise the named
// permission. Owner short-circuits to true; super_admin satisfies any
// permission gated behind admin or agent checks; everyone else needs the
// permission in their explicit grants or their role defaults.
func (s *PermissionService) HasPermission(ctx context.Context, tenantID, userID, permission string) bool {
	user, err := s.store.Users().GetUserByID(ctx, tenantID, userID)
	if err != nil {
		return false
	}
	return Resolve(user, permission)
}

// Resolve is the pure half of the check, exposed for callers that already
// hold the user record.
func Resolve(user domain.User, permission string) bool {
	switch user.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleSuperAdmin:
		if domain.AdminOrAgentGated(permission) {
			return true
		}
	}
	if slices.Contains(user.Permissions, permission) {
		return true
	}
	return slices.Contains(domain.DefaultPermissions(user.Role), permission)
}

// EffectivePermissions returns the union of explicit grants and role
// defaults, deduplicated, for display purposes. Owner and super_admin
// callers should rely on HasPermission; their short-circuit is not
// expanded into a list here.
func (s *PermissionService) EffectivePermissions(ctx context.Context, tenantID, userID string) ([]string, error) {
	user, err := s.store.Users().GetUserByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, p := range user.Permissions {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range domain.DefaultPermissions(user.Role) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
