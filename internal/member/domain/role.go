package domain

import (
	"errors"
	"strings"
)

// Role is the tenant-level role assigned to a user or carried on an
// invitation. Roles form a small fixed hierarchy for authorization checks;
// all comparisons go through Satisfies so no handler does ad-hoc string
// matching.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAgent      Role = "agent"
	RoleViewer     Role = "viewer"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// supersets maps each role to the set of role checks it satisfies. Owner
// satisfies everything unconditionally; super_admin is a superset of both
// admin and agent.
var supersets = map[Role]map[Role]bool{
	RoleOwner: {
		RoleOwner: true, RoleSuperAdmin: true, RoleAdmin: true,
		RoleManager: true, RoleAgent: true, RoleViewer: true,
	},
	RoleSuperAdmin: {
		RoleSuperAdmin: true, RoleAdmin: true, RoleAgent: true,
	},
	RoleAdmin:   {RoleAdmin: true},
	RoleManager: {RoleManager: true},
	RoleAgent:   {RoleAgent: true},
	RoleViewer:  {RoleViewer: true},
}

// invitable is the subset of roles an invitation may carry. Owner and
// super_admin accounts are provisioned out of band, never via invitation.
var invitable = map[Role]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleAgent:   true,
}

// ParseRole validates a role string from the wire.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := supersets[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Satisfies reports whether a check gated on required passes for r.
// Unknown roles fail closed.
func (r Role) Satisfies(required Role) bool {
	return supersets[r][required]
}

// Invitable reports whether invitations may carry this role.
func (r Role) Invitable() bool {
	return invitable[r]
}

func (r Role) String() string { return string(r) }

// rolePermissions are the permission names implied by each role, before any
// explicit per-user grants. Owner and super_admin short-circuit in the
// resolver and need no entry beyond what lower roles inherit through
// Satisfies.
var rolePermissions = map[Role][]string{
	RoleAdmin: {
		"invitations:manage",
		"teams:manage",
		"members:manage",
		"conversations:read",
		"conversations:write",
		"reports:read",
	},
	RoleManager: {
		"members:manage",
		"conversations:read",
		"conversations:write",
		"reports:read",
	},
	RoleAgent: {
		"conversations:read",
		"conversations:write",
	},
	RoleViewer: {
		"conversations:read",
	},
}

// DefaultPermissions returns the role-implied permission names for r.
func DefaultPermissions(r Role) []string {
	return rolePermissions[r]
}

// AdminOrAgentGated reports whether a permission is gated behind admin or
// agent role checks elsewhere in the platform. super_admin is treated as a
// superset for exactly these.
func AdminOrAgentGated(permission string) bool {
	for _, role := range []Role{RoleAdmin, RoleAgent} {
		for _, p := range rolePermissions[role] {
			if p == permission {
				return true
			}
		}
	}
	return false
}
