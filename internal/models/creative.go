// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CreativeStatus is one creative's position in the render lifecycle.
type CreativeStatus string

const (
	CreativePending    CreativeStatus = "pending"
	CreativeGenerating CreativeStatus = "generating"
	CreativeGenerated  CreativeStatus = "generated"
	CreativeFailed     CreativeStatus = "failed"
)

// creativeTransitions lists every allowed status move. The generating
// substate is claimed by exactly one render worker; a duplicate delivery
// finds the row already claimed and short-circuits. A worker that fails
// a render attempt releases the claim back to pending so the next
// attempt can reclaim the row.
var creativeTransitions = map[CreativeStatus][]CreativeStatus{
	CreativePending:    {CreativeGenerating, CreativeFailed},
	CreativeGenerating: {CreativeGenerated, CreativeFailed, CreativePending},
}

// CanTransition reports whether moving from s to next is allowed.
func (s CreativeStatus) CanTransition(next CreativeStatus) bool {
	for _, t := range creativeTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Resolved reports whether the creative has reached a terminal state.
func (s CreativeStatus) Resolved() bool {
	return s == CreativeGenerated || s == CreativeFailed
}

// AIMetadata records what one creative cost to generate. Token counts and
// the cost share come from the concept call; Error is appended by the render
// stage on failure without touching the other fields.
type AIMetadata struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	CostCents        int    `json:"cost_cents"`
	Error            string `json:"error,omitempty"`
}

// Creative is one generated ad artifact: a concept (headline, body,
// background prompt) plus its rendered images. Destroyed with its campaign.
type Creative struct {
	ID               uuid.UUID      `json:"id"`
	CampaignID       uuid.UUID      `json:"campaign_id"`
	Headline         string         `json:"headline"`
	Body             string         `json:"body"`
	BackgroundPrompt string         `json:"background_prompt"`
	Status           CreativeStatus `json:"status"`
	Metadata         AIMetadata     `json:"ai_metadata"`
	RawImageKey      *string        `json:"raw_image_key,omitempty"`   // unprocessed provider output
	FinalImageKey    *string        `json:"final_image_key,omitempty"` // set exactly once, by the render stage that generated it
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CostDollars converts the stored cost share to dollars for display.
func (c *Creative) CostDollars() float64 {
	return float64(c.Metadata.CostCents) / 100.0
}
