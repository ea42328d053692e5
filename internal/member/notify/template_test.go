package notify_test

import (
	"testing"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/notify"
	"github.com/stretchr/testify/require"
)

func TestRenderInvitation(t *testing.T) {
	t.Parallel()

	inv := domain.Invitation{
		Email:         "a@x.com",
		Role:          domain.RoleAgent,
		Token:         "tok-123+/=",
		CustomMessage: "Welcome aboard!",
		ExpiresAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	msg, err := notify.RenderInvitation(inv, "https://app.crewdesk.io/")
	require.NoError(t, err)

	require.Equal(t, "a@x.com", msg.To)
	require.Contains(t, msg.HTML, "https://app.crewdesk.io/accept?token=tok-123%2B%2F%3D")
	require.Contains(t, msg.HTML, "Welcome aboard!")
	require.Contains(t, msg.HTML, "agent")
	require.Contains(t, msg.Text, "Mar 1, 2026")
	require.NotContains(t, msg.HTML, "//accept", "base URL trailing slash must be trimmed")
}

func TestRenderInvitationEscapesCustomMessage(t *testing.T) {
	t.Parallel()

	inv := domain.Invitation{
		Email:     "a@x.com",
		Role:      domain.RoleAgent,
		Token:     "tok",
		ExpiresAt: time.Now(),
		// The custom message is inviter-supplied text; it must not inject
		// markup into the email.
		CustomMessage: `<script>alert(1)</script>`,
	}

	msg, err := notify.RenderInvitation(inv, "https://app.crewdesk.io")
	require.NoError(t, err)
	require.NotContains(t, msg.HTML, "<script>")
}
