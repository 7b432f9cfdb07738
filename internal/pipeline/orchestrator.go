// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

// Renderer is one render attempt for one creative.
type Renderer interface {
	Render(ctx context.Context, creativeID uuid.UUID) error
}

// ConceptSource is the concept generation stage.
type ConceptSource interface {
	Generate(ctx context.Context, campaign *models.Campaign, brand *models.Brand) ([]models.Creative, error)
}

// Orchestrator owns the campaign and creative state machines. It consumes
// queue jobs, runs the stages with their retry budgets, and guarantees no
// entity is left in a transient state when a job handler returns nil.
//
// A handler returning a non-nil error signals an infrastructure problem
// (e.g. shutdown mid-job); the queue re-delivers the job.
type Orchestrator struct {
	brands    BrandStore
	campaigns CampaignStore
	creatives CreativeStore
	concepts  ConceptSource
	renderer  Renderer
	enqueuer  Enqueuer

	// ConceptAttempts and RenderAttempts are the per-stage retry ceilings;
	// RetryDelay is the fixed pause between attempts.
	ConceptAttempts int
	RenderAttempts  int
	RetryDelay      time.Duration

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator with the default retry policy
// (2 concept attempts, 3 render attempts, 5 second delay).
func NewOrchestrator(brands BrandStore, campaigns CampaignStore, creatives CreativeStore, concepts ConceptSource, renderer Renderer, enqueuer Enqueuer) *Orchestrator {
	return &Orchestrator{
		brands:          brands,
		campaigns:       campaigns,
		creatives:       creatives,
		concepts:        concepts,
		renderer:        renderer,
		enqueuer:        enqueuer,
		ConceptAttempts: 2,
		RenderAttempts:  3,
		RetryDelay:      5 * time.Second,
		sleep:           sleepCtx,
	}
}

// Submit moves a campaign into the pipeline: draft campaigns enter
// processing directly; failed campaigns have their creative lineage wiped
// and re-enter processing. The generate job is then enqueued. Called from
// the user-facing layer, which does not wait for generation to finish.
func (o *Orchestrator) Submit(ctx context.Context, campaignID uuid.UUID) error {
	campaign, err := o.campaigns.FindByID(campaignID)
	if err != nil {
		return err
	}

	switch campaign.Status {
	case models.CampaignDraft:
		if _, err := o.campaigns.Transition(campaignID, models.CampaignDraft, models.CampaignProcessing); err != nil {
			return err
		}
	case models.CampaignFailed:
		// Whole-campaign retry: regenerate all three creatives from scratch.
		if err := o.creatives.DeleteByCampaign(campaignID); err != nil {
			return err
		}
		if _, err := o.campaigns.Transition(campaignID, models.CampaignFailed, models.CampaignProcessing); err != nil {
			return err
		}
	default:
		return &InvalidInputError{Reason: "campaign is not in a submittable state: " + string(campaign.Status)}
	}

	if err := o.enqueuer.Enqueue(ctx, JobGenerateCampaign, campaignID); err != nil {
		// No job made it into the queue, so nothing will ever move this
		// campaign out of processing. Fail it so resubmission stays open.
		if _, terr := o.campaigns.Transition(campaignID, models.CampaignProcessing, models.CampaignFailed); terr != nil {
			slog.Error("failed to roll back campaign after enqueue error",
				"campaign", campaignID, "error", terr)
		}
		return err
	}
	return nil
}

// HandleGenerateCampaign runs the concept generation stage for a campaign
// and fans out one render job per created creative. Concept generation is
// a single unit: either three pending creatives exist afterwards or the
// campaign is failed.
func (o *Orchestrator) HandleGenerateCampaign(ctx context.Context, campaignID uuid.UUID) error {
	campaign, err := o.campaigns.FindByID(campaignID)
	if err != nil {
		if classify(err) == discard {
			slog.Warn("campaign vanished, dropping generate job", "campaign", campaignID)
			return nil
		}
		return err
	}

	if campaign.Status != models.CampaignProcessing {
		// Submit performs the transition before enqueueing; anything else
		// here is a stale or duplicate delivery.
		slog.Info("campaign not processing, dropping generate job",
			"campaign", campaignID, "status", campaign.Status)
		return nil
	}

	// Duplicate delivery after a successful concept call: the batch
	// already exists, so skip straight to fanning out render jobs.
	existing, err := o.creatives.ListByCampaign(campaignID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return o.fanOutRenders(ctx, campaignID, existing)
	}

	created, err := o.runConceptStage(ctx, campaign)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err() // shutdown mid-job; let the queue redeliver
		}
		slog.Error("concept generation failed",
			"campaign", campaignID, "error", err)
		if _, terr := o.campaigns.Transition(campaignID, models.CampaignProcessing, models.CampaignFailed); terr != nil {
			return terr
		}
		return nil
	}

	return o.fanOutRenders(ctx, campaignID, created)
}

// runConceptStage runs concept generation under its retry budget.
func (o *Orchestrator) runConceptStage(ctx context.Context, campaign *models.Campaign) ([]models.Creative, error) {
	brand, err := o.brands.FindByID(campaign.BrandID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= o.ConceptAttempts; attempt++ {
		created, err := o.concepts.Generate(ctx, campaign, brand)
		if err == nil {
			return created, nil
		}
		lastErr = err

		switch classify(err) {
		case retryable:
			if attempt < o.ConceptAttempts {
				slog.Warn("concept generation attempt failed, retrying",
					"campaign", campaign.ID, "attempt", attempt, "error", err)
				if serr := o.sleep(ctx, o.RetryDelay); serr != nil {
					return nil, serr
				}
				continue
			}
		case fatal, discard:
			return nil, err
		}
	}
	return nil, lastErr
}

// fanOutRenders enqueues one independent render job per creative. A
// creative that already resolved (duplicate delivery) is skipped; render
// jobs themselves are idempotent, so over-enqueueing is harmless.
func (o *Orchestrator) fanOutRenders(ctx context.Context, campaignID uuid.UUID, creatives []models.Creative) error {
	for _, c := range creatives {
		if c.Status.Resolved() {
			continue
		}
		if err := o.enqueuer.Enqueue(ctx, JobRenderCreative, c.ID); err != nil {
			return err
		}
	}
	// All creatives may already be resolved on a redelivery; reconcile so
	// the campaign does not stay processing forever.
	return o.reconcile(campaignID)
}

// HandleRenderCreative runs the image render stage for one creative under
// its retry budget, marks the creative failed when the budget is exhausted
// or the error is fatal, and reconciles the owning campaign. One
// creative's failure never touches its siblings.
func (o *Orchestrator) HandleRenderCreative(ctx context.Context, creativeID uuid.UUID) error {
	var lastErr error

	for attempt := 1; attempt <= o.RenderAttempts; attempt++ {
		err := o.renderer.Render(ctx, creativeID)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err

		switch classify(err) {
		case discard:
			slog.Warn("creative vanished, dropping render job", "creative", creativeID)
			return nil
		case fatal:
			// Retrying cannot fix it; stop consuming the budget.
		case retryable:
			if attempt < o.RenderAttempts {
				slog.Warn("render attempt failed, retrying",
					"creative", creativeID, "attempt", attempt, "error", err)
				if serr := o.sleep(ctx, o.RetryDelay); serr != nil {
					return serr
				}
				continue
			}
		}
		break
	}

	if lastErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("render failed permanently", "creative", creativeID, "error", lastErr)
		if err := o.creatives.MarkFailed(creativeID, lastErr.Error()); err != nil {
			if classify(err) == discard {
				return nil
			}
			return err
		}
	}

	creative, err := o.creatives.FindByID(creativeID)
	if err != nil {
		if classify(err) == discard {
			return nil
		}
		return err
	}
	return o.reconcile(creative.CampaignID)
}

// reconcile completes the campaign once every creative has resolved.
// Per-creative failures stay on the creatives; campaign-level failed is
// reserved for the concept stage.
func (o *Orchestrator) reconcile(campaignID uuid.UUID) error {
	unresolved, err := o.creatives.CountUnresolved(campaignID)
	if err != nil {
		return err
	}
	if unresolved > 0 {
		return nil
	}

	changed, err := o.campaigns.Transition(campaignID, models.CampaignProcessing, models.CampaignCompleted)
	if err != nil {
		return err
	}
	if changed {
		slog.Info("campaign completed", "campaign", campaignID)
	}
	return nil
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
