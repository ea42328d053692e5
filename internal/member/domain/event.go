package domain

import "time"

// Event is an audit record emitted by lifecycle operations. Operations
// return events explicitly instead of firing into an opaque bus, so tests
// can assert on them and the caller decides where they go.
type Event struct {
	Name       string
	TenantID   string
	ActorID    string // empty for unauthenticated operations (accept)
	SubjectID  string // invitation, user, or team id
	OccurredAt time.Time
	Meta       map[string]string
}

// Event names.
const (
	EventInvitationCreated   = "invitation.created"
	EventInvitationResent    = "invitation.resent"
	EventInvitationCancelled = "invitation.cancelled"
	EventInvitationAccepted  = "invitation.accepted"
	EventUserCreated         = "user.created"
	EventTeamCreated         = "team.created"
	EventTeamDeleted         = "team.deleted"
	EventMemberAdded         = "team.member_added"
	EventMemberRemoved       = "team.member_removed"
)

// NewEvent stamps an event with the current time.
func NewEvent(name, tenantID, actorID, subjectID string, meta map[string]string) Event {
	return Event{
		Name:       name,
		TenantID:   tenantID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
		Meta:       meta,
	}
}
