// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package pipeline implements the asynchronous creative generation
// pipeline: concept generation (one text call producing exactly three
// creative drafts), per-creative image rendering, and the orchestrator
// that sequences the two stages, drives the campaign and creative state
// machines, and applies the retry policy.
//
// The stages raise typed errors and never retry themselves; the
// orchestrator is the single place where an error's kind is interpreted
// against the per-stage retry budget.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

// Job types consumed by the queue workers.
const (
	JobGenerateCampaign = "campaign.generate"
	JobRenderCreative   = "creative.render"
)

// BrandStore is the slice of the brand store the pipeline reads.
type BrandStore interface {
	FindByID(id uuid.UUID) (*models.Brand, error)
}

// CampaignStore is the slice of the campaign store the pipeline drives.
type CampaignStore interface {
	FindByID(id uuid.UUID) (*models.Campaign, error)
	Transition(id uuid.UUID, from, to models.CampaignStatus) (bool, error)
}

// CreativeStore is the slice of the creative store the pipeline drives.
// Every status-changing method is a conditional update; the pipeline relies
// on that for duplicate-delivery safety.
type CreativeStore interface {
	CreateBatch(campaignID uuid.UUID, creatives []models.Creative) ([]models.Creative, error)
	FindByID(id uuid.UUID) (*models.Creative, error)
	ListByCampaign(campaignID uuid.UUID) ([]models.Creative, error)
	ClaimForRender(id uuid.UUID) (bool, error)
	ReleaseClaim(id uuid.UUID) error
	MarkGenerated(id uuid.UUID, rawKey, finalKey string) (bool, error)
	MarkFailed(id uuid.UUID, message string) error
	CountUnresolved(campaignID uuid.UUID) (int, error)
	DeleteByCampaign(campaignID uuid.UUID) error
}

// ConfigStore resolves the current AppConfig record at call time.
type ConfigStore interface {
	Current() (*models.AppConfig, error)
}

// AssetStore stores rendered image bytes under a key and returns nothing
// but an error; keys are deterministic per creative.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// Enqueuer hands a (jobType, entityID) pair to the job queue. Delivery is
// at least once; handlers must tolerate duplicates.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, entityID uuid.UUID) error
}
