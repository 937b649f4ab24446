package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/logging"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInternal           = "Internal server error"
)

// Service validates credentials against the store and issues tokens.
type Service struct {
	users  UserFinder
	tokens *TokenService
}

// NewService creates a new auth Service.
func NewService(users UserFinder, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareAgainstDummy burns one bcrypt comparison so that unknown usernames
// take as long as wrong passwords.
func compareAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks username and password and returns a signed token.
// The username is looked up with a parameterized query and the password is
// compared against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	log := logging.FromContext(ctx)

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			compareAgainstDummy(req.Password)
			log.Warn(ctx, "login failed", "username", req.Username, "reason", "unknown user")
			return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
		}
		return nil, apperror.NewDatabaseError(msgInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn(ctx, "login failed", "username", req.Username, "reason", "password mismatch")
		return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username, user.ProfilePic)
	if err != nil {
		return nil, apperror.NewInternalError(msgInternal, err)
	}

	log.Info(ctx, "login succeeded", "user_id", user.ID, "username", user.Username)
	return &LoginResponse{Message: "Login successful", Token: token}, nil
}
