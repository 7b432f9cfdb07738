// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/ai"
	"github.com/michal-danieluk/adforge/internal/models"
)

// GeneratorSelector picks the image provider variant for a model id.
// Injected so tests can substitute a fake provider; production wires
// ai.SelectImageGenerator.
type GeneratorSelector func(model string) ai.ImageGenerator

// PostProcessor transforms raw provider bytes into the canonical final
// image. Must be deterministic for identical input.
type PostProcessor func(data []byte) ([]byte, error)

// ImageRenderer performs one render attempt for one creative: claim the
// row, call the image provider, post-process to the canonical square, and
// attach the result. It never retries and never marks a creative failed;
// both decisions belong to the orchestrator.
type ImageRenderer struct {
	creatives CreativeStore
	config    ConfigStore
	assets    AssetStore
	selector  GeneratorSelector
	process   PostProcessor

	// DefaultModel is used when no AppConfig record selects one.
	DefaultModel string
}

// NewImageRenderer creates a renderer.
func NewImageRenderer(creatives CreativeStore, config ConfigStore, assets AssetStore, selector GeneratorSelector, process PostProcessor, defaultModel string) *ImageRenderer {
	return &ImageRenderer{
		creatives:    creatives,
		config:       config,
		assets:       assets,
		selector:     selector,
		process:      process,
		DefaultModel: defaultModel,
	}
}

// Render executes a single render attempt.
//
// Idempotency: an already-generated creative short-circuits to success
// without touching its assets. A creative claimed by another worker is
// treated as handled. On any failure after the claim, the claim is
// released so a later attempt can proceed; terminal failure marking is the
// orchestrator's call.
func (r *ImageRenderer) Render(ctx context.Context, creativeID uuid.UUID) error {
	creative, err := r.creatives.FindByID(creativeID)
	if err != nil {
		return err
	}

	switch creative.Status {
	case models.CreativeGenerated:
		slog.Info("creative already generated, skipping", "creative", creativeID)
		return nil
	case models.CreativeFailed:
		return nil
	}

	// Fail fast before claiming or calling the provider.
	if creative.BackgroundPrompt == "" {
		return &InvalidInputError{Reason: "creative has no background prompt"}
	}

	claimed, err := r.creatives.ClaimForRender(creativeID)
	if err != nil {
		return err
	}
	if !claimed {
		// Duplicate delivery: another worker holds the claim or resolved
		// the creative between our read and the update.
		slog.Info("creative claim lost, skipping", "creative", creativeID)
		return nil
	}

	err = r.renderClaimed(ctx, creative)
	if err != nil {
		if relErr := r.creatives.ReleaseClaim(creativeID); relErr != nil {
			slog.Error("failed to release render claim", "creative", creativeID, "error", relErr)
		}
		return err
	}
	return nil
}

// renderClaimed does the provider call and attachment for a claimed creative.
func (r *ImageRenderer) renderClaimed(ctx context.Context, creative *models.Creative) error {
	// The model selection is read at call time so a settings change
	// applies to the next render without a restart.
	model := r.DefaultModel
	if cfg, err := r.config.Current(); err != nil {
		return fmt.Errorf("render read config: %w", err)
	} else if cfg != nil && cfg.ImageModelID != "" {
		model = cfg.ImageModelID
	}

	gen := r.selector(model)
	raw, contentType, err := gen.GenerateImage(ctx, creative.BackgroundPrompt, model)
	if err != nil {
		return err
	}

	final, err := r.process(raw)
	if err != nil {
		return fmt.Errorf("render post-process: %w", err)
	}

	rawKey := fmt.Sprintf("creatives/%s/raw.png", creative.ID)
	finalKey := fmt.Sprintf("creatives/%s/final.png", creative.ID)

	if err := r.assets.Upload(ctx, rawKey, contentType, raw); err != nil {
		return fmt.Errorf("render upload raw: %w", err)
	}
	if err := r.assets.Upload(ctx, finalKey, "image/png", final); err != nil {
		return fmt.Errorf("render upload final: %w", err)
	}

	ok, err := r.creatives.MarkGenerated(creative.ID, rawKey, finalKey)
	if err != nil {
		return err
	}
	if !ok {
		// The claim was stolen or resolved underneath us; the winner's
		// attachment stands and ours is orphaned in storage.
		slog.Warn("creative resolved by another worker during render", "creative", creative.ID)
	}

	slog.Info("creative rendered",
		"creative", creative.ID,
		"model", model,
		"provider", gen.Name(),
	)
	return nil
}
