package admin

import (
	"net/http"
	"strconv"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/auth"
	"github.com/user/profile-service/logging"
)

// LogsResponse carries the tail of the application log.
type LogsResponse struct {
	Lines []string `json:"lines"`
}

// Handlers serves the admin endpoints.
type Handlers struct {
	logFile string
}

// NewHandlers creates new admin Handlers. logFile may be empty.
func NewHandlers(logFile string) *Handlers {
	return &Handlers{logFile: logFile}
}

// HandleLogs godoc
// @Summary Tail the application log
// @Description Returns the last lines of the configured log file. Administrators only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param lines query int false "Number of lines (1-1000, default 100)"
// @Success 200 {object} admin.LogsResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid lines parameter"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden"
// @Failure 404 {object} apperror.ErrorResponse "Log file not configured"
// @Router /admin/logs [get]
func (h *Handlers) HandleLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := DefaultLines
		if raw := r.URL.Query().Get("lines"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 || v > MaxLines {
				auth.WriteError(w, r, apperror.NewValidationError("Invalid lines parameter", err))
				return
			}
			n = v
		}

		if h.logFile == "" {
			auth.WriteError(w, r, apperror.NewNotFoundError("Log file not configured", nil))
			return
		}

		lines, err := TailFile(h.logFile, n)
		if err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("Internal server error", err))
			return
		}

		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			logging.FromContext(r.Context()).Info(r.Context(), "log tail served",
				"username", claims.Username, "lines", len(lines))
		}
		auth.WriteJSON(w, http.StatusOK, LogsResponse{Lines: lines})
	}
}
