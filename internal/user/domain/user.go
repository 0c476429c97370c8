package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Identity fields are immutable once created;
// only the password hash may change.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is the user's authority level.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Authority returns the role as a token scope claim (e.g. "ROLE_USER").
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// IsElevated reports whether the role bypasses per-task ownership checks.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
