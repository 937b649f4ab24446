package users

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strconv"
	"sync"
	"testing"

	"github.com/user/profile-service/auth"
)

type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]*auth.User
	nextID    int64
	getErr    error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*auth.User{}, nextID: 1}
}

func (f *fakeRepo) seed(username string, pic *string) *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &auth.User{ID: f.nextID, Username: username, Role: auth.RoleUser, ProfilePic: pic}
	f.nextID++
	f.users[username] = u
	return u
}

func (f *fakeRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) UpdateProfilePic(ctx context.Context, username, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[username]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.ProfilePic = &filename
	return nil
}

func (f *fakeRepo) Create(ctx context.Context, username, passwordHash, role string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, ErrUsernameTaken
	}
	u := &auth.User{ID: f.nextID, Username: username, PasswordHash: passwordHash, Role: role}
	f.nextID++
	f.users[username] = u
	return u, nil
}

func (f *fakeRepo) picture(username string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[username].ProfilePic
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func claimsFor(u *auth.User) *auth.Claims {
	c := &auth.Claims{Username: u.Username}
	c.Subject = strconv.FormatInt(u.ID, 10)
	return c
}
