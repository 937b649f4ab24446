// Package server assembles the HTTP router: global middleware, the public
// and authenticated route groups, and the JSON fallbacks for unknown routes.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/profile-service/admin"
	"github.com/user/profile-service/apperror"
	"github.com/user/profile-service/auth"
	"github.com/user/profile-service/config"
	_ "github.com/user/profile-service/docs"
	"github.com/user/profile-service/logging"
	"github.com/user/profile-service/uploads"
	"github.com/user/profile-service/users"
)

const requestTimeout = 60 * time.Second

// Deps are the long-lived dependencies the router is built from.
type Deps struct {
	Config *config.AppConfig
	Logger logging.Logger
	Users  users.Repository
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// NewRouter wires services and handlers and returns the root handler.
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	store, err := uploads.NewStore(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	authHandlers := auth.NewHandlers(auth.NewService(d.Users, tokens))
	profileHandlers := users.NewHandlers(
		users.NewService(d.Users, store, cfg.Server.PublicBaseURL),
		cfg.Upload.MaxBytes,
	)
	uploadHandlers := uploads.NewHandlers(store)
	adminHandlers := admin.NewHandlers(cfg.Log.File)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, r, apperror.NewNotFoundError("Not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, r, apperror.NewMethodNotAllowedError("Method not allowed"))
	})

	r.Get("/health", handleHealth)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandlers.HandleLogin())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))

		r.Get("/profile", profileHandlers.HandleGetProfile())
		r.Post("/upload", profileHandlers.HandleUploadProfilePic())
	})

	r.Get("/uploads/{filename}", uploadHandlers.HandleServe())

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		r.Use(auth.RequireRole(d.Users, auth.RoleAdmin))

		r.Get("/logs", adminHandlers.HandleLogs())
	})

	return r, nil
}

// handleHealth godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} server.HealthResponse
// @Router /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	auth.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// recoverer turns a handler panic into a JSON 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logging.FromContext(r.Context()).Error(r.Context(), "panic recovered",
					"panic", fmt.Sprint(rvr), "path", r.URL.Path)
				auth.WriteError(w, r, apperror.NewInternalError("Internal server error", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
