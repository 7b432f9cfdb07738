// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API: brand and campaign CRUD,
// the generation trigger, creative listing, and the settings endpoint.
// Handlers stay thin; all pipeline logic lives in internal/pipeline.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/store"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response", "error", err)
		}
	}
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store errors onto HTTP status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrSingletonExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("store error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// urlID parses the {id} URL parameter as a UUID.
func urlID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// decodeBody decodes the request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
