// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/michal-danieluk/adforge/internal/models"
	"github.com/michal-danieluk/adforge/internal/storage"
	"github.com/michal-danieluk/adforge/internal/store"
)

// maxLogoBytes caps logo uploads at 5 MB.
const maxLogoBytes = 5 << 20

// Brands serves the brand CRUD endpoints and logo uploads.
type Brands struct {
	brands  *store.BrandStore
	storage *storage.Client // may be nil; logo uploads then return 503
}

// NewBrands creates the brand handler group.
func NewBrands(brands *store.BrandStore, storageClient *storage.Client) *Brands {
	return &Brands{brands: brands, storage: storageClient}
}

// brandRequest is the create/update payload.
type brandRequest struct {
	Name        string `json:"name"`
	ToneOfVoice string `json:"tone_of_voice"`
	Colors      []struct {
		HexValue string `json:"hex_value"`
		Primary  bool   `json:"primary"`
	} `json:"colors"`
}

func (req *brandRequest) toModel() *models.Brand {
	b := &models.Brand{
		Name:        req.Name,
		ToneOfVoice: models.ToneOfVoice(req.ToneOfVoice),
	}
	for _, c := range req.Colors {
		b.Colors = append(b.Colors, models.BrandColor{HexValue: c.HexValue, Primary: c.Primary})
	}
	return b
}

// List returns all brands. GET /api/brands
func (h *Brands) List(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, brands)
}

// Create validates and persists a new brand. POST /api/brands
func (h *Brands) Create(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	brand := req.toModel()
	if err := brand.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.brands.Create(brand)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Show returns one brand with its palette. GET /api/brands/{id}
func (h *Brands) Show(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid brand id")
		return
	}
	brand, err := h.brands.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, brand)
}

// Update replaces a brand's fields and palette. PUT /api/brands/{id}
func (h *Brands) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	var req brandRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	brand := req.toModel()
	brand.ID = id
	if err := brand.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.brands.Update(brand); err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := h.brands.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a brand and cascades to its campaigns. DELETE /api/brands/{id}
func (h *Brands) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid brand id")
		return
	}
	if err := h.brands.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// UploadLogo stores a brand logo. POST /api/brands/{id}/logo
func (h *Brands) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid brand id")
		return
	}
	if _, err := h.brands.FindByID(id); err != nil {
		respondStoreError(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	switch contentType {
	case "image/png", "image/jpeg", "image/svg+xml":
	default:
		respondError(w, http.StatusUnsupportedMediaType, "logo must be PNG, JPEG, or SVG")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLogoBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "logo must be smaller than 5MB")
		return
	}

	key := fmt.Sprintf("brands/%s/logo", id)
	if err := h.storage.Upload(r.Context(), key, contentType, data); err != nil {
		respondError(w, http.StatusBadGateway, "logo upload failed")
		return
	}
	if err := h.brands.SetLogo(id, key); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"logo_key": key,
		"logo_url": h.storage.FileURL(key),
	})
}
