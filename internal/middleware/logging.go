// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package middleware carries the HTTP middleware shared by every AdForge
// API route: request logging and panic recovery.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to remember the status code a
// handler sent, since the standard interface offers no way to read it back.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader records the first status code; later calls pass through
// unrecorded, matching net/http's superfluous-WriteHeader behavior.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write records the implicit 200 when a handler writes a body without
// calling WriteHeader first.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Logger emits one slog line per request with method, path, status, and
// duration. Generation itself happens on the queue workers, so slow lines
// here point at the database or object storage, not the AI providers.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}
