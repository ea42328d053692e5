package http

import (
	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/pkg/membersdk"
)

// withToken controls whether the raw token rides on an invitation view. It
// does only on the create and resend responses to the inviter.
func invitationView(inv domain.Invitation, withToken bool) membersdk.Invitation {
	v := membersdk.Invitation{
		ID:            inv.ID,
		Email:         inv.Email,
		Role:          inv.Role.String(),
		Status:        string(inv.Status),
		CustomMessage: inv.CustomMessage,
		TeamIDs:       inv.TeamIDs,
		Permissions:   inv.Permissions,
		ExpiresAt:     inv.ExpiresAt,
		AcceptedAt:    inv.AcceptedAt,
		CreatedAt:     inv.CreatedAt,
	}
	if withToken {
		v.Token = inv.Token
	}
	return v
}

func teamView(t domain.Team) membersdk.Team {
	return membersdk.Team{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		IsDefault: t.IsDefault,
		CreatedAt: t.CreatedAt,
	}
}

func memberView(m domain.TeamMember) membersdk.TeamMember {
	return membersdk.TeamMember{
		TeamID:   m.TeamID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		Skills:   m.Skills,
		Active:   m.Active,
		JoinedAt: m.JoinedAt,
	}
}

func userView(u domain.PublicUser) membersdk.User {
	return membersdk.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
