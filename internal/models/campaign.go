// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the campaign's position in the generation lifecycle.
type CampaignStatus string

const (
	CampaignDraft      CampaignStatus = "draft"
	CampaignProcessing CampaignStatus = "processing"
	CampaignCompleted  CampaignStatus = "completed"
	CampaignFailed     CampaignStatus = "failed"
)

// campaignTransitions lists every allowed status move. failed -> processing
// is the resubmit path; everything else is monotonic.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignDraft:      {CampaignProcessing},
	CampaignProcessing: {CampaignCompleted, CampaignFailed},
	CampaignFailed:     {CampaignProcessing},
}

// CanTransition reports whether moving from s to next is allowed.
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	for _, t := range campaignTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Campaign is one generation request scoped to a brand. Once submitted it is
// mutated only by the pipeline.
type Campaign struct {
	ID             uuid.UUID      `json:"id"`
	BrandID        uuid.UUID      `json:"brand_id"`
	ProductName    string         `json:"product_name"`
	TargetAudience string         `json:"target_audience"`
	Description    string         `json:"description"`
	Status         CampaignStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Validate checks the fields a user supplies at creation time.
func (c *Campaign) Validate() error {
	if c.BrandID == uuid.Nil {
		return fmt.Errorf("campaign: brand is required")
	}
	if c.ProductName == "" {
		return fmt.Errorf("campaign: product name is required")
	}
	if len(c.ProductName) > 100 {
		return fmt.Errorf("campaign: product name is too long (max 100 characters)")
	}
	if c.TargetAudience == "" {
		return fmt.Errorf("campaign: target audience is required")
	}
	if len(c.TargetAudience) > 150 {
		return fmt.Errorf("campaign: target audience is too long (max 150 characters)")
	}
	if len(c.Description) > 500 {
		return fmt.Errorf("campaign: description is too long (max 500 characters)")
	}
	return nil
}
