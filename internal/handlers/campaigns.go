// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
	"github.com/michal-danieluk/adforge/internal/pipeline"
	"github.com/michal-danieluk/adforge/internal/storage"
	"github.com/michal-danieluk/adforge/internal/store"
)

// Campaigns serves campaign CRUD and the generation trigger. Generate
// returns 202 immediately; the pipeline proceeds in the background and
// clients poll the campaign status.
type Campaigns struct {
	campaigns    *store.CampaignStore
	creatives    *store.CreativeStore
	brands       *store.BrandStore
	orchestrator *pipeline.Orchestrator
	storage      *storage.Client // may be nil; asset URLs are then omitted
}

// NewCampaigns creates the campaign handler group.
func NewCampaigns(campaigns *store.CampaignStore, creatives *store.CreativeStore, brands *store.BrandStore, orchestrator *pipeline.Orchestrator, storageClient *storage.Client) *Campaigns {
	return &Campaigns{
		campaigns:    campaigns,
		creatives:    creatives,
		brands:       brands,
		orchestrator: orchestrator,
		storage:      storageClient,
	}
}

// campaignRequest is the create payload.
type campaignRequest struct {
	BrandID        uuid.UUID `json:"brand_id"`
	ProductName    string    `json:"product_name"`
	TargetAudience string    `json:"target_audience"`
	Description    string    `json:"description"`
}

// creativeView decorates a creative with its asset URLs.
type creativeView struct {
	models.Creative
	RawImageURL   string `json:"raw_image_url,omitempty"`
	FinalImageURL string `json:"final_image_url,omitempty"`
}

// campaignView embeds a campaign's creatives in its show response.
type campaignView struct {
	models.Campaign
	Creatives []creativeView `json:"creatives"`
}

// List returns all campaigns, newest first. GET /api/campaigns
func (h *Campaigns) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, campaigns)
}

// Create persists a draft campaign. POST /api/campaigns
func (h *Campaigns) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	campaign := &models.Campaign{
		BrandID:        req.BrandID,
		ProductName:    req.ProductName,
		TargetAudience: req.TargetAudience,
		Description:    req.Description,
	}
	if err := campaign.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, err := h.brands.FindByID(req.BrandID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnprocessableEntity, "brand is invalid")
			return
		}
		respondStoreError(w, err)
		return
	}

	created, err := h.campaigns.Create(campaign)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Show returns a campaign with its creatives. GET /api/campaigns/{id}
func (h *Campaigns) Show(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	campaign, err := h.campaigns.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	creatives, err := h.creatives.ListByCampaign(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	view := campaignView{Campaign: *campaign, Creatives: make([]creativeView, 0, len(creatives))}
	for _, c := range creatives {
		cv := creativeView{Creative: c}
		if h.storage != nil {
			if c.RawImageKey != nil {
				cv.RawImageURL = h.storage.FileURL(*c.RawImageKey)
			}
			if c.FinalImageKey != nil {
				cv.FinalImageURL = h.storage.FileURL(*c.FinalImageKey)
			}
		}
		view.Creatives = append(view.Creatives, cv)
	}
	respondJSON(w, http.StatusOK, view)
}

// Generate submits a campaign to the pipeline. POST /api/campaigns/{id}/generate
// Accepts draft campaigns and failed campaigns (whole-campaign retry).
func (h *Campaigns) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	if err := h.orchestrator.Submit(r.Context(), id); err != nil {
		var inputErr *pipeline.InvalidInputError
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, http.StatusNotFound, "not found")
		case errors.As(err, &inputErr):
			respondError(w, http.StatusConflict, inputErr.Reason)
		default:
			respondStoreError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": string(models.CampaignProcessing)})
}

// Delete removes a campaign and its creatives. DELETE /api/campaigns/{id}
func (h *Campaigns) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	if err := h.campaigns.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
