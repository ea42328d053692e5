package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation. Transitions are
// monotonic: pending may move to accepted, cancelled, or expired; nothing
// leaves a terminal state.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

// Invitation is a pending offer for an email address to join a tenant.
// Token is the raw high-entropy credential; it is returned to the inviter
// once at creation and otherwise only ever travels inside the invitation
// email.
type Invitation struct {
	ID            string
	TenantID      string
	InviterID     string
	Email         string
	Role          Role
	Token         string
	Status        InvitationStatus
	CustomMessage string
	TeamIDs       []string
	Permissions   []string
	ExpiresAt     time.Time
	AcceptedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal reports whether the invitation can no longer change state.
func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}
