package domain

import "time"

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserRemoved UserStatus = "removed"
)

// User is a tenant member. Email is unique within a tenant. Permissions
// holds explicit grants on top of the role-implied defaults; the resolver
// unions the two.
type User struct {
	ID          string
	TenantID    string
	Email       string
	FirstName   string
	LastName    string
	Role        Role
	Status      UserStatus
	Permissions []string
	// PasswordHash is the argon2id PHC string for the user's credential.
	// Never serialized toward clients.
	PasswordHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicUser is the subset of user fields safe to return from the
// unauthenticated accept endpoint.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
	}
}
