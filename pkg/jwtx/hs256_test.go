package jwtx_test

import (
	"testing"
	"time"

	"github.com/crewdesk/memberd/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-0123456789")

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := jwtx.SignHS256(jwtx.Claims{
		TenantID: "t1",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  "crewdesk-auth",
			Subject: "user-1",
		},
	}, testSecret, time.Minute)
	require.NoError(t, err)

	v := jwtx.NewHS256Verifier(testSecret, "crewdesk-auth")
	claims, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "t1", claims.TenantID)
	require.Equal(t, "admin", claims.Role)
	require.NoError(t, claims.ValidateExpiry())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := jwtx.SignHS256(jwtx.Claims{
		TenantID:         "t1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, testSecret, time.Minute)
	require.NoError(t, err)

	v := jwtx.NewHS256Verifier([]byte("another-secret"), "")
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	raw, err := jwtx.SignHS256(jwtx.Claims{
		TenantID:         "t1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Subject: "user-1"},
	}, testSecret, time.Minute)
	require.NoError(t, err)

	v := jwtx.NewHS256Verifier(testSecret, "crewdesk-auth")
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsMissingTenant(t *testing.T) {
	t.Parallel()

	raw, err := jwtx.SignHS256(jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, testSecret, time.Minute)
	require.NoError(t, err)

	v := jwtx.NewHS256Verifier(testSecret, "")
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	raw, err := jwtx.SignHS256(jwtx.Claims{
		TenantID:         "t1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, testSecret, -time.Minute)
	require.NoError(t, err)

	v := jwtx.NewHS256Verifier(testSecret, "")
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}
