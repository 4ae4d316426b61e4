package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPLogger logs every request with its status and duration. Session
// polling is logged at debug level.
func HTTPLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wr := NewStatusCodeRecorder(w)
		next.ServeHTTP(wr, r)

		level := slog.LevelInfo
		if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wr.Status,
			"duration", time.Since(start),
		)
	})
}

// StatusCodeRecorder remembers the status written through it.
type StatusCodeRecorder struct {
	http.ResponseWriter
	Status int
}

func NewStatusCodeRecorder(w http.ResponseWriter) *StatusCodeRecorder {
	return &StatusCodeRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (r *StatusCodeRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *StatusCodeRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
