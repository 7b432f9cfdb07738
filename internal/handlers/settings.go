// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/michal-danieluk/adforge/internal/models"
	"github.com/michal-danieluk/adforge/internal/store"
)

// Settings serves the AppConfig endpoints. The API key is write-only:
// responses reveal whether a key is set, never the key itself.
type Settings struct {
	config *store.AppConfigStore
}

// NewSettings creates the settings handler group.
func NewSettings(config *store.AppConfigStore) *Settings {
	return &Settings{config: config}
}

// settingsView is the read shape.
type settingsView struct {
	HasAPIKey    bool   `json:"has_api_key"`
	ImageModelID string `json:"image_model_id"`
}

// settingsRequest is the write shape. An empty APIKey keeps the stored one.
type settingsRequest struct {
	APIKey       string `json:"api_key"`
	ImageModelID string `json:"image_model_id"`
}

// Show returns the current settings. GET /api/settings
func (h *Settings) Show(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Current()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	view := settingsView{}
	if cfg != nil {
		view.HasAPIKey = cfg.HasKey()
		view.ImageModelID = cfg.ImageModelID
	}
	respondJSON(w, http.StatusOK, view)
}

// Update creates or overwrites the settings record. PUT /api/settings
// Rotation is last-writer-wins and applies to provider calls issued after
// the write; in-flight calls keep the key they resolved.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	current, err := h.config.Current()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	next := &models.AppConfig{APIKey: req.APIKey, ImageModelID: req.ImageModelID}
	if current == nil {
		if err := h.config.Create(next); err != nil {
			respondStoreError(w, err)
			return
		}
	} else {
		if next.APIKey == "" {
			next.APIKey = current.APIKey
		}
		if err := h.config.Update(next); err != nil {
			respondStoreError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, settingsView{
		HasAPIKey:    next.HasKey(),
		ImageModelID: next.ImageModelID,
	})
}
