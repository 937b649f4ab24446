package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/profile-service/config"
)

const testSecret = "test-secret-0123456789abcdef"

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*User
	err   error
	calls int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*User{}}
}

func (f *fakeUsers) add(t *testing.T, id int64, username, password, role string, pic *string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := &User{ID: id, Username: username, PasswordHash: string(hash), Role: role, ProfilePic: pic}
	f.mu.Lock()
	f.users[username] = u
	f.mu.Unlock()
	return u
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestTokens(t *testing.T, secret string) *TokenService {
	t.Helper()
	ts, err := NewTokenService(config.AuthConfig{
		JWTSecret:     secret,
		JWTAlgorithm:  "HS256",
		TokenDuration: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func strPtr(s string) *string { return &s }
