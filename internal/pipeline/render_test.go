// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/ai"
	"github.com/michal-danieluk/adforge/internal/models"
)

type fakeImageGenerator struct {
	img   []byte
	err   error
	calls int

	lastPrompt string
	lastModel  string
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt, model string) ([]byte, string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastModel = model
	if f.err != nil {
		return nil, "", f.err
	}
	return f.img, "image/png", nil
}

func (f *fakeImageGenerator) Name() string { return "fake" }

func identityProcess(data []byte) ([]byte, error) {
	return append([]byte("processed:"), data...), nil
}

func pendingCreative() *models.Creative {
	return &models.Creative{
		ID:               uuid.New(),
		CampaignID:       uuid.New(),
		Headline:         "Headline",
		Body:             "Body",
		BackgroundPrompt: "Warm espresso tones",
		Status:           models.CreativePending,
	}
}

func newTestRenderer(creatives *fakeCreativeStore, gen ai.ImageGenerator, assets *fakeAssetStore, config *fakeConfigStore) *ImageRenderer {
	selector := func(model string) ai.ImageGenerator { return gen }
	return NewImageRenderer(creatives, config, assets, selector, identityProcess, "imagen-3.0-generate-001")
}

func TestRender_Success(t *testing.T) {
	creative := pendingCreative()
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("rawimage")}
	assets := &fakeAssetStore{}
	r := newTestRenderer(creatives, gen, assets, &fakeConfigStore{})

	if err := r.Render(context.Background(), creative.ID); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	got := creatives.get(creative.ID)
	if got.Status != models.CreativeGenerated {
		t.Fatalf("status = %s, want generated", got.Status)
	}
	wantRaw := "creatives/" + creative.ID.String() + "/raw.png"
	wantFinal := "creatives/" + creative.ID.String() + "/final.png"
	if got.RawImageKey == nil || *got.RawImageKey != wantRaw {
		t.Errorf("raw key = %v, want %s", got.RawImageKey, wantRaw)
	}
	if got.FinalImageKey == nil || *got.FinalImageKey != wantFinal {
		t.Errorf("final key = %v, want %s", got.FinalImageKey, wantFinal)
	}

	if len(assets.uploads) != 2 {
		t.Fatalf("%d uploads, want 2 (raw + final)", len(assets.uploads))
	}
	if assets.uploads[0].key != wantRaw || string(assets.uploads[0].data) != "rawimage" {
		t.Errorf("raw upload = %+v", assets.uploads[0])
	}
	if assets.uploads[1].key != wantFinal || string(assets.uploads[1].data) != "processed:rawimage" {
		t.Errorf("final upload should carry the post-processed bytes, got %+v", assets.uploads[1])
	}

	if gen.lastPrompt != "Warm espresso tones" {
		t.Errorf("provider prompt = %q", gen.lastPrompt)
	}
	if gen.lastModel != "imagen-3.0-generate-001" {
		t.Errorf("provider model = %q, want the default", gen.lastModel)
	}
}

func TestRender_ModelFromAppConfig(t *testing.T) {
	creative := pendingCreative()
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("x")}
	config := &fakeConfigStore{config: &models.AppConfig{ImageModelID: "gemini-2.5-flash-image"}}
	r := newTestRenderer(creatives, gen, &fakeAssetStore{}, config)

	if err := r.Render(context.Background(), creative.ID); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gen.lastModel != "gemini-2.5-flash-image" {
		t.Errorf("provider model = %q, want the AppConfig selection", gen.lastModel)
	}
}

func TestRender_AlreadyGeneratedIsIdempotent(t *testing.T) {
	creative := pendingCreative()
	creative.Status = models.CreativeGenerated
	key := "creatives/existing/final.png"
	creative.FinalImageKey = &key
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("x")}
	assets := &fakeAssetStore{}
	r := newTestRenderer(creatives, gen, assets, &fakeConfigStore{})

	if err := r.Render(context.Background(), creative.ID); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("provider called %d times for a generated creative, want 0", gen.calls)
	}
	if len(assets.uploads) != 0 {
		t.Errorf("%d uploads for a generated creative, want 0", len(assets.uploads))
	}
	got := creatives.get(creative.ID)
	if got.FinalImageKey == nil || *got.FinalImageKey != key {
		t.Error("existing final image must not be replaced")
	}
}

func TestRender_EmptyPromptFailsBeforeClaim(t *testing.T) {
	creative := pendingCreative()
	creative.BackgroundPrompt = ""
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("x")}
	r := newTestRenderer(creatives, gen, &fakeAssetStore{}, &fakeConfigStore{})

	err := r.Render(context.Background(), creative.ID)
	var inputErr *InvalidInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("provider called %d times, want 0", gen.calls)
	}
	// The creative was never claimed.
	if got := creatives.get(creative.ID); got.Status != models.CreativePending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestRender_ClaimLostSkips(t *testing.T) {
	creative := pendingCreative()
	creative.Status = models.CreativeGenerating // another worker holds the claim
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("x")}
	r := newTestRenderer(creatives, gen, &fakeAssetStore{}, &fakeConfigStore{})

	if err := r.Render(context.Background(), creative.ID); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("provider called %d times while claim held elsewhere, want 0", gen.calls)
	}
}

func TestRender_ProviderErrorReleasesClaim(t *testing.T) {
	creative := pendingCreative()
	creatives := newFakeCreativeStore(creative)
	provErr := &ai.ProviderError{Provider: "imagen", Status: 503, Body: "overloaded"}
	gen := &fakeImageGenerator{err: provErr}
	r := newTestRenderer(creatives, gen, &fakeAssetStore{}, &fakeConfigStore{})

	err := r.Render(context.Background(), creative.ID)
	if !errors.Is(err, provErr) {
		t.Fatalf("provider error should surface, got %v", err)
	}
	// The claim is released so a later attempt can run.
	if got := creatives.get(creative.ID); got.Status != models.CreativePending {
		t.Errorf("status = %s, want pending after released claim", got.Status)
	}
}

func TestRender_UploadErrorReleasesClaim(t *testing.T) {
	creative := pendingCreative()
	creatives := newFakeCreativeStore(creative)
	gen := &fakeImageGenerator{img: []byte("x")}
	assets := &fakeAssetStore{err: errors.New("bucket unavailable")}
	r := newTestRenderer(creatives, gen, assets, &fakeConfigStore{})

	if err := r.Render(context.Background(), creative.ID); err == nil {
		t.Fatal("expected upload error")
	}
	if got := creatives.get(creative.ID); got.Status != models.CreativePending {
		t.Errorf("status = %s, want pending after released claim", got.Status)
	}
}

func TestRender_MissingCreativeReturnsNotFound(t *testing.T) {
	creatives := newFakeCreativeStore()
	r := newTestRenderer(creatives, &fakeImageGenerator{}, &fakeAssetStore{}, &fakeConfigStore{})

	err := r.Render(context.Background(), uuid.New())
	if classify(err) != discard {
		t.Fatalf("missing creative should classify as discard, got %v", err)
	}
}
