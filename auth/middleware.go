package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/logging"
)

// Middleware verifies the bearer token on every request and stores the
// claims in the request context. It rejects the request with 401 otherwise.
func Middleware(tokens TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, appErr := bearerToken(r)
			if appErr != nil {
				WriteError(w, r, appErr)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					WriteError(w, r, apperror.NewAuthError("Token expired", err))
					return
				}
				WriteError(w, r, apperror.NewAuthError("Invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, *apperror.AppError) {
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		return "", apperror.NewAuthError("Unauthorized", nil)
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperror.NewAuthError("Invalid authorization header", nil)
	}
	return parts[1], nil
}

// RequireRole admits only callers whose stored role equals role.
// The role is read from the credential store on each request: the token
// proves identity, not privileges. Must run after Middleware.
func RequireRole(users UserFinder, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, r, apperror.NewAuthError("Unauthorized", nil))
				return
			}

			user, err := users.GetByUsername(r.Context(), claims.Username)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					WriteError(w, r, apperror.NewAuthError("Invalid token", err))
					return
				}
				WriteError(w, r, apperror.NewDatabaseError(msgInternal, err))
				return
			}

			if user.Role != role {
				logging.FromContext(r.Context()).Warn(r.Context(), "access denied",
					"username", user.Username, "required_role", role, "path", r.URL.Path)
				WriteError(w, r, apperror.NewForbiddenError("Forbidden", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
