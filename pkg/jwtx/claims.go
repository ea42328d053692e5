// Package jwtx verifies bearer tokens minted by the platform auth service.
// memberd does not issue tokens; it only needs to establish the calling
// actor's identity, tenant, and role from a shared-secret HS256 JWT.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrTokenExpired = errors.New("jwtx: token expired")
)

// Claims carries the subset of platform claims memberd consumes.
type Claims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`

	jwt.RegisteredClaims
}

// ValidateExpiry rejects expired or not-yet-valid tokens.
func (c Claims) ValidateExpiry() error {
	now := time.Now()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrInvalidToken
	}
	return nil
}
