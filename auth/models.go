// Package auth handles authentication and authorization: credential checks
// at login, session token issuance and verification, and the middleware that
// turns a bearer token into a request identity.
package auth

import (
	"context"
	"errors"
	"time"
)

// Roles stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrUserNotFound is returned by a UserFinder when no row matches.
var ErrUserNotFound = errors.New("user not found")

// User is a row of the users table.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	ProfilePic   *string   `json:"profile_pic"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserFinder is the read side of the credential store that auth depends on.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}
