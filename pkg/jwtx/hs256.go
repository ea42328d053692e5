package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a raw compact JWT and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256Verifier validates tokens signed with a shared HMAC secret.
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewHS256Verifier builds a verifier for tokens from the given issuer. An
// empty issuer disables the issuer check.
func NewHS256Verifier(secret []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer}
}

func (v *HS256Verifier) Verify(raw string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// SignHS256 mints a token for the given claims. Used by tests and local
// tooling; production tokens come from the auth service.
func SignHS256(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
