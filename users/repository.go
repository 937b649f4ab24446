// Package users owns the users table: the credential store read at login and
// the profile operations of an authenticated user.
package users

import (
	"context"
	"errors"

	"github.com/user/profile-service/auth"
)

// ErrUsernameTaken is returned by Create on a duplicate username.
var ErrUsernameTaken = errors.New("username already exists")

// Repository is the credential store.
type Repository interface {
	auth.UserFinder
	UpdateProfilePic(ctx context.Context, username, filename string) error
	Create(ctx context.Context, username, passwordHash, role string) (*auth.User, error)
}
