package cryptox_test

import (
	"encoding/base64"
	"testing"

	"github.com/crewdesk/memberd/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenLengthAndEncoding(t *testing.T) {
	t.Parallel()

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43) // 32 bytes base64url, no padding

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, cryptox.TokenSize256)
}

func TestGenerateTokenRejectsBadSize(t *testing.T) {
	t.Parallel()

	_, err := cryptox.GenerateToken(0)
	require.Error(t, err)
	_, err = cryptox.GenerateToken(-8)
	require.Error(t, err)
}

// Tokens generated back to back must not share structure. A common prefix
// would indicate derivation from time or a counter and make invitation
// tokens enumerable.
func TestGenerateTokenHasNoSharedStructure(t *testing.T) {
	t.Parallel()

	const n = 200
	seen := make(map[string]struct{}, n)
	var prev string
	for range n {
		token := cryptox.MustGenerateToken(cryptox.TokenSize256)

		_, dup := seen[token]
		require.False(t, dup, "token repeated")
		seen[token] = struct{}{}

		if prev != "" {
			require.NotEqual(t, prev[:8], token[:8], "consecutive tokens share a prefix")
		}
		prev = token
	}
}
