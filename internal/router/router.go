// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain for the
// AdForge API server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michal-danieluk/adforge/internal/handlers"
	"github.com/michal-danieluk/adforge/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(brands *handlers.Brands, campaigns *handlers.Campaigns, settings *handlers.Settings) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/brands", func(r chi.Router) {
			r.Get("/", brands.List)
			r.Post("/", brands.Create)
			r.Get("/{id}", brands.Show)
			r.Put("/{id}", brands.Update)
			r.Delete("/{id}", brands.Delete)
			r.Post("/{id}/logo", brands.UploadLogo)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", campaigns.List)
			r.Post("/", campaigns.Create)
			r.Get("/{id}", campaigns.Show)
			r.Delete("/{id}", campaigns.Delete)
			r.Post("/{id}/generate", campaigns.Generate)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settings.Show)
			r.Put("/", settings.Update)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
