package logging

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

var discard Logger = NewSlogLogger(slog.New(slog.DiscardHandler))

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or a logger that drops
// everything when none was installed.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return discard
}

// RequestLogger logs one line per request and installs a request-scoped
// logger tagged with the chi request id.
//
// Only request metadata is recorded. Bodies, query strings, headers and form
// values are never logged: they carry passwords and bearer tokens.
func RequestLogger(base Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With("request_id", middleware.GetReqID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(NewContext(r.Context(), reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_ip", r.RemoteAddr,
			}
			switch {
			case status >= http.StatusInternalServerError:
				reqLogger.Error(r.Context(), "request completed", args...)
			case status >= http.StatusBadRequest:
				reqLogger.Warn(r.Context(), "request completed", args...)
			default:
				reqLogger.Info(r.Context(), "request completed", args...)
			}
		})
	}
}
