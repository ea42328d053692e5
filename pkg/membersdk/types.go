package membersdk

import "time"

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// CreateInvitationRequest invites an email address into the caller's
// tenant.
type CreateInvitationRequest struct {
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	CustomMessage string   `json:"custom_message,omitempty"`
	TeamIDs       []string `json:"team_ids,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
}

// Invitation is the admin-facing view of an invitation. Token is populated
// only on the create and resend responses; it never appears in lists or in
// anything the invitee can reach.
type Invitation struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	Token         string     `json:"token,omitempty"`
	CustomMessage string     `json:"custom_message,omitempty"`
	TeamIDs       []string   `json:"team_ids,omitempty"`
	Permissions   []string   `json:"permissions,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type InvitationListResponse struct {
	Invitations []Invitation `json:"invitations"`
}

// ValidateInvitationResponse is returned by the public validate endpoint.
// On failure Valid is false and Message carries the one generic reason.
type ValidateInvitationResponse struct {
	Valid     bool      `json:"valid"`
	Message   string    `json:"message,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

type AcceptInvitationRequest struct {
	Token     string `json:"token"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type AcceptInvitationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type CreateTeamRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamListResponse struct {
	Teams []Team `json:"teams"`
}

type AddMemberRequest struct {
	UserID string   `json:"user_id"`
	Role   string   `json:"role,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

type TeamMember struct {
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	Skills   []string  `json:"skills,omitempty"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joined_at"`
}

type MemberListResponse struct {
	Members []TeamMember `json:"members"`
}

type PermissionCheckRequest struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

type PermissionCheckResponse struct {
	Allowed bool `json:"allowed"`
}

type LivezResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadyzResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
