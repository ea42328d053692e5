package notify

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/crewdesk/memberd/internal/member/domain"
)

const invitationSubject = "You have been invited to join a workspace"

var invitationHTML = template.Must(template.New("invitation").Parse(`<html>
<body>
<p>You have been invited to join a workspace as <b>{{.Role}}</b>.</p>
{{if .CustomMessage}}<blockquote>{{.CustomMessage}}</blockquote>{{end}}
<p><a href="{{.AcceptURL}}">Accept your invitation</a></p>
<p>This invitation expires on {{.Expires}}. If you were not expecting it,
you can ignore this email.</p>
</body>
</html>`))

// RenderInvitation builds the invitation email. baseURL is the public URL
// of the accept page; the raw token rides along as a query parameter.
func RenderInvitation(inv domain.Invitation, baseURL string) (Message, error) {
	acceptURL := fmt.Sprintf("%s/accept?token=%s",
		strings.TrimSuffix(baseURL, "/"), url.QueryEscape(inv.Token))

	var html strings.Builder
	err := invitationHTML.Execute(&html, map[string]string{
		"Role":          string(inv.Role),
		"CustomMessage": inv.CustomMessage,
		"AcceptURL":     acceptURL,
		"Expires":       inv.ExpiresAt.Format("Jan 2, 2006"),
	})
	if err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf(
		"You have been invited to join a workspace as %s.\n\nAccept: %s\n\nThe invitation expires on %s.\n",
		inv.Role, acceptURL, inv.ExpiresAt.Format("Jan 2, 2006"))

	return Message{
		To:      inv.Email,
		Subject: invitationSubject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}
