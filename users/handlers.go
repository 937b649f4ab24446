package users

import (
	"errors"
	"io"
	"net/http"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/auth"
)

// UploadField is the multipart field carrying the picture.
const UploadField = "profile_pic"

// Handlers provides HTTP handlers for the authenticated user's profile.
type Handlers struct {
	service  *Service
	maxBytes int64
}

// NewHandlers creates new Handlers. maxUploadBytes caps the upload body.
func NewHandlers(service *Service, maxUploadBytes int64) *Handlers {
	return &Handlers{service: service, maxBytes: maxUploadBytes}
}

// HandleGetProfile godoc
// @Summary Get current user's profile
// @Description Returns the username and the current profile picture URL, read from the database.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized, Invalid token or Token expired"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/profile [get]
func (h *Handlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), claims.Username)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUploadProfilePic godoc
// @Summary Upload a profile picture
// @Description Accepts a PNG or JPEG in the multipart field "profile_pic" and makes it the caller's picture.
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param profile_pic formData file true "PNG or JPEG image"
// @Success 200 {object} users.UploadResponse
// @Failure 400 {object} apperror.ErrorResponse "No file provided, Invalid file type, Invalid file name or File too large"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized, Invalid token or Token expired"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /api/upload [post]
func (h *Handlers) HandleUploadProfilePic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
			return
		}

		if r.ContentLength > h.maxBytes {
			auth.WriteError(w, r, apperror.NewValidationError("File too large", nil))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				auth.WriteError(w, r, apperror.NewValidationError("File too large", err))
				return
			}
			auth.WriteError(w, r, apperror.NewValidationError("No file provided", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(UploadField)
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("No file provided", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			auth.WriteError(w, r, apperror.NewInternalError(msgInternal, err))
			return
		}

		resp, err := h.service.SetProfilePic(r.Context(), claims, Upload{
			Filename:     header.Filename,
			DeclaredType: header.Header.Get("Content-Type"),
			Data:         data,
		})
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, resp)
	}
}
