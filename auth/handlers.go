package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/logging"
)

// maxLoginBody caps the login payload; credentials are tiny.
const maxLoginBody = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handlers wraps the auth Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleLogin godoc
// @Summary User Login
// @Description Checks a username and password and returns a signed session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.LoginResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Username and password required"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)
		defer r.Body.Close()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewValidationError("Username and password required", err))
			return
		}
		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("Username and password required", err))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// WriteJSON serializes data as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// Headers are already sent; an encode failure can only be dropped.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes err as a standardized `{"error": "..."}` response.
// Errors that are not *apperror.AppError become a generic 500. Server-side
// failures are logged with their cause; the cause never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError(msgInternal, err)
	}

	if appErr.IsServerError() {
		logging.FromContext(r.Context()).Error(r.Context(), "request failed",
			"status", appErr.StatusCode(), "error", appErr.Error())
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
