package service

import "errors"

// Sentinel errors returned by the services. The HTTP layer maps these onto
// status codes with errors.Is; anything else is a 500.
var (
	ErrValidation = errors.New("invalid input")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrInvitationPending  = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrRoleNotInvitable   = errors.New("role cannot be assigned through an invitation")

	ErrTeamNotFound  = errors.New("team not found")
	ErrTeamNameTaken = errors.New("team name already in use")
	ErrTeamIsDefault = errors.New("default team cannot be deleted")
	ErrTeamNotEmpty  = errors.New("team still has members")

	ErrMemberAlreadyExists = errors.New("user is already a member of this team")
	ErrMemberNotFound      = errors.New("team member not found")
)
