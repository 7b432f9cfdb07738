// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/michal-danieluk/adforge/internal/ai"
	"github.com/michal-danieluk/adforge/internal/models"
)

// conceptCount is the batch size of one concept generation call. The
// provider is asked for exactly this many concepts and anything else is a
// validation failure; the batch is never padded or truncated.
const conceptCount = 3

// TextGenerator is the slice of the text provider the concept stage uses.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (*ai.TextResult, error)
}

// ConceptGenerator turns one campaign into exactly three pending creatives
// using the text provider, and accounts the call's token cost across them.
type ConceptGenerator struct {
	text      TextGenerator
	creatives CreativeStore

	// CostPer1KTokens is the blended text rate in dollars per 1000 tokens
	// used to derive cost cents from the usage block.
	CostPer1KTokens float64
}

// NewConceptGenerator creates a concept generator with the given rate.
func NewConceptGenerator(text TextGenerator, creatives CreativeStore, costPer1K float64) *ConceptGenerator {
	return &ConceptGenerator{
		text:            text,
		creatives:       creatives,
		CostPer1KTokens: costPer1K,
	}
}

// concept is one element of the provider's concepts array.
type concept struct {
	Headline         string `json:"headline"`
	Body             string `json:"body"`
	BackgroundPrompt string `json:"background_prompt"`
}

type conceptsResponse struct {
	Concepts []concept `json:"concepts"`
}

// Generate calls the text provider, validates the structured response, and
// atomically persists three pending creatives for the campaign. Either all
// three are created or none are.
func (g *ConceptGenerator) Generate(ctx context.Context, campaign *models.Campaign, brand *models.Brand) ([]models.Creative, error) {
	result, err := g.text.GenerateText(ctx, systemPrompt, buildUserPrompt(campaign, brand))
	if err != nil {
		return nil, err
	}

	var parsed conceptsResponse
	if err := json.Unmarshal([]byte(result.Content), &parsed); err != nil {
		return nil, &ValidationError{Reason: "response is not valid JSON: " + err.Error()}
	}
	if err := validateConcepts(parsed.Concepts); err != nil {
		return nil, err
	}

	// Cost is computed once for the whole call and divided evenly across
	// the batch with integer division. The dropped remainder is a known,
	// documented under-count of at most two cents per call.
	totalCents := CostCents(result.Usage.TotalTokens, g.CostPer1KTokens)
	share := totalCents / conceptCount

	drafts := make([]models.Creative, 0, conceptCount)
	for _, c := range parsed.Concepts {
		drafts = append(drafts, models.Creative{
			Headline:         c.Headline,
			Body:             c.Body,
			BackgroundPrompt: c.BackgroundPrompt,
			Metadata: models.AIMetadata{
				Model:            result.Model,
				PromptTokens:     result.Usage.PromptTokens,
				CompletionTokens: result.Usage.CompletionTokens,
				TotalTokens:      result.Usage.TotalTokens,
				CostCents:        share,
			},
		})
	}

	return g.creatives.CreateBatch(campaign.ID, drafts)
}

// validateConcepts enforces the structural contract: exactly three
// concepts, each with every field non-empty.
func validateConcepts(concepts []concept) error {
	if len(concepts) != conceptCount {
		return &ValidationError{Reason: fmt.Sprintf("expected exactly %d concepts, got %d", conceptCount, len(concepts))}
	}
	for i, c := range concepts {
		if strings.TrimSpace(c.Headline) == "" {
			return &ValidationError{Reason: fmt.Sprintf("concept %d is missing headline", i+1)}
		}
		if strings.TrimSpace(c.Body) == "" {
			return &ValidationError{Reason: fmt.Sprintf("concept %d is missing body", i+1)}
		}
		if strings.TrimSpace(c.BackgroundPrompt) == "" {
			return &ValidationError{Reason: fmt.Sprintf("concept %d is missing background_prompt", i+1)}
		}
	}
	return nil
}

// CostCents converts a total token count to cost in integer cents at the
// given dollars-per-1k-tokens rate, rounded to the nearest cent. The result
// is deterministic and never negative for non-negative inputs.
func CostCents(totalTokens int, ratePer1K float64) int {
	if totalTokens <= 0 || ratePer1K <= 0 {
		return 0
	}
	return int(math.Round(float64(totalTokens) / 1000.0 * ratePer1K * 100.0))
}

const systemPrompt = `You are an expert advertising copywriter. Generate social media ad concepts based on the user's requirements.

CRITICAL: Respond ONLY with valid JSON in this exact format:
{
  "concepts": [
    {
      "headline": "Short, punchy headline (max 8 words)",
      "body": "Compelling ad body text (2-3 sentences, max 100 words)",
      "background_prompt": "Detailed prompt for the background image generator (describe visual style, colors, mood, composition)"
    }
  ]
}

Generate exactly 3 unique concepts with different creative angles.`

// buildUserPrompt embeds the brand identity and campaign brief.
func buildUserPrompt(campaign *models.Campaign, brand *models.Brand) string {
	colors := make([]string, 0, len(brand.Colors))
	for _, c := range brand.Colors {
		colors = append(colors, c.HexValue)
	}
	palette := strings.Join(colors, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "Create 3 social media ad concepts for:\n\n")
	fmt.Fprintf(&b, "Brand: %s\n", brand.Name)
	fmt.Fprintf(&b, "Tone: %s\n", brand.ToneOfVoice)
	fmt.Fprintf(&b, "Brand Colors: %s\n\n", palette)
	fmt.Fprintf(&b, "Product/Campaign: %s\n", campaign.ProductName)
	fmt.Fprintf(&b, "Target Audience: %s\n", campaign.TargetAudience)
	if campaign.Description != "" {
		fmt.Fprintf(&b, "Additional Context: %s\n", campaign.Description)
	}
	fmt.Fprintf(&b, "\nEach concept should:\n")
	fmt.Fprintf(&b, "- Have a unique creative angle\n")
	fmt.Fprintf(&b, "- Match the %s tone\n", brand.ToneOfVoice)
	fmt.Fprintf(&b, "- Appeal to %s\n", campaign.TargetAudience)
	fmt.Fprintf(&b, "- Include a clear call-to-action in the body text\n\n")
	fmt.Fprintf(&b, "Background prompts should suggest visuals that complement the brand colors (%s) and create visual interest.", palette)
	return b.String()
}
