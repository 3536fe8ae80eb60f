package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User is the full credential-store row. Token columns hold SHA-256 hashes
// of the opaque values that left the system, never the values themselves.
type User struct {
	ID                    string
	Username              string
	Email                 string
	PasswordHash          []byte
	Role                  UserRole
	IsVerified            bool
	VerificationTokenHash []byte
	ResetTokenHash        []byte
	ResetTokenExpiresAt   *time.Time
	RefreshTokenHash      []byte
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// PublicUser is the allow-list projection that is safe to serialize.
// New User fields stay private unless explicitly added here.
type PublicUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	IsVerified bool      `json:"emailVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
