package domain

import "time"

// Team groups agents within a tenant. Name is unique per tenant; at most
// one team per tenant carries IsDefault.
type Team struct {
	ID        string
	TenantID  string
	Name      string
	Color     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamRole is the member's role within a team, independent of their
// tenant-level Role.
type TeamRole string

const (
	TeamMemberRole TeamRole = "member"
	TeamLeadRole   TeamRole = "lead"
	TeamAdminRole  TeamRole = "admin"
)

// TeamMember links a user to a team. A user appears at most once per team.
type TeamMember struct {
	TeamID      string
	UserID      string
	Role        TeamRole
	Permissions []string
	Skills      []string
	Active      bool
	JoinedAt    time.Time
}
