package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/auth"
	"github.com/user/profile-service/logging"
	"github.com/user/profile-service/uploads"
)

const (
	msgInvalidFileType = "Invalid file type"
	msgInvalidFileName = "Invalid file name"
	msgInvalidToken    = "Invalid token"
	msgInternal        = "Internal server error"
)

// Service implements profile reads, picture uploads and user seeding.
type Service struct {
	repo    Repository
	store   *uploads.Store
	baseURL string
}

// NewService creates a new Service. publicBaseURL prefixes picture URLs.
func NewService(repo Repository, store *uploads.Store, publicBaseURL string) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// FileURL returns the public URL of a stored file.
func (s *Service) FileURL(name string) string {
	return s.baseURL + "/uploads/" + url.PathEscape(name)
}

// GetProfile reads the current profile of username from the store.
func (s *Service) GetProfile(ctx context.Context, username string) (*ProfileResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewAuthError(msgInvalidToken, err)
		}
		return nil, apperror.NewDatabaseError(msgInternal, err)
	}

	resp := &ProfileResponse{Username: user.Username}
	if user.ProfilePic != nil && *user.ProfilePic != "" {
		u := s.FileURL(*user.ProfilePic)
		resp.ProfilePic = &u
	}
	return resp, nil
}

// SetProfilePic validates an uploaded picture, stores it under a fresh
// "<user id>_<8 hex>_<sanitized name>" and records it for the caller.
//
// The declared content type must be exactly image/png or image/jpeg and must
// agree with the sniffed type and the file extension. The previously
// referenced file is removed only after the new reference is committed.
func (s *Service) SetProfilePic(ctx context.Context, claims *auth.Claims, up Upload) (*UploadResponse, error) {
	log := logging.FromContext(ctx)

	declared := up.DeclaredType
	if declared != uploads.TypePNG && declared != uploads.TypeJPEG {
		return nil, apperror.NewValidationError(msgInvalidFileType, nil)
	}
	detected, ok := uploads.DetectImage(up.Data)
	if !ok || detected != declared {
		log.Warn(ctx, "upload rejected", "username", claims.Username,
			"declared_type", declared, "detected_type", detected)
		return nil, apperror.NewValidationError(msgInvalidFileType, nil)
	}

	name, err := uploads.SanitizeFilename(up.Filename)
	if err != nil || !uploads.ExtensionMatches(name, detected) {
		return nil, apperror.NewValidationError(msgInvalidFileName, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.NewAuthError(msgInvalidToken, err)
	}

	current, err := s.repo.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewAuthError(msgInvalidToken, err)
		}
		return nil, apperror.NewDatabaseError(msgInternal, err)
	}

	stored := storedName(userID, name)
	if err := s.store.Save(stored, bytes.NewReader(up.Data)); err != nil {
		return nil, apperror.NewInternalError(msgInternal, err)
	}

	if err := s.repo.UpdateProfilePic(ctx, claims.Username, stored); err != nil {
		if rmErr := s.store.Remove(stored); rmErr != nil {
			log.Warn(ctx, "orphan upload left on disk", "file", stored, "error", rmErr)
		}
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewAuthError(msgInvalidToken, err)
		}
		return nil, apperror.NewDatabaseError(msgInternal, err)
	}

	if prev := current.ProfilePic; prev != nil && *prev != stored && ownedBy(*prev, userID) {
		if err := s.store.Remove(*prev); err != nil {
			log.Warn(ctx, "previous picture left on disk", "file", *prev, "error", err)
		}
	}

	log.Info(ctx, "profile picture updated", "user_id", userID, "file", stored, "bytes", len(up.Data))
	return &UploadResponse{Message: "Profile picture updated", ProfilePic: s.FileURL(stored)}, nil
}

// storedName never repeats, so a failed update can always delete its own file.
func storedName(userID int64, name string) string {
	return fmt.Sprintf("%d_%s_%s", userID, uuid.NewString()[:8], name)
}

func ownedBy(name string, userID int64) bool {
	return uploads.ValidStoredName(name) && strings.HasPrefix(name, fmt.Sprintf("%d_", userID))
}

// CreateUser hashes password with bcrypt and inserts a new user.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (*auth.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.NewValidationError("Username and password required", nil)
	}
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, apperror.NewValidationError(fmt.Sprintf("role must be %q or %q", auth.RoleUser, auth.RoleAdmin), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewValidationError("password cannot be hashed", err)
	}

	user, err := s.repo.Create(ctx, username, string(hash), role)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, apperror.NewConflictError(fmt.Sprintf("username %q already exists", username), err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}
