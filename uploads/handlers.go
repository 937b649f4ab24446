package uploads

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/auth"
	"github.com/user/profile-service/logging"
)

// Handlers serves stored uploads.
type Handlers struct {
	store *Store
}

// NewHandlers creates a new Handlers instance
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// HandleServe godoc
// @Summary Get an uploaded file
// @Description Streams a stored profile picture. Only PNG and JPEG files are served.
// @Tags Uploads
// @Produce png
// @Produce jpeg
// @Param filename path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} apperror.ErrorResponse "File not found"
// @Router /uploads/{filename} [get]
func (h *Handlers) HandleServe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "filename"))
		if err != nil || !ValidStoredName(name) {
			auth.WriteError(w, r, apperror.NewNotFoundError("File not found", err))
			return
		}

		f, info, contentType, err := h.store.Open(name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logging.FromContext(r.Context()).Warn(r.Context(), "open upload failed", "error", err)
			}
			auth.WriteError(w, r, apperror.NewNotFoundError("File not found", err))
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
