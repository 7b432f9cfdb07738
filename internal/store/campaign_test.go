// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

func TestCampaignStore_CreateStartsDraft(t *testing.T) {
	db := testDB(t)
	brand := createTestBrand(t, db, "Campaign Create Test")
	campaign := createTestCampaign(t, db, brand)

	if campaign.Status != models.CampaignDraft {
		t.Errorf("status = %s, want draft", campaign.Status)
	}

	found, err := NewCampaignStore(db).FindByID(campaign.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.ProductName != "Test Product" || found.BrandID != brand.ID {
		t.Errorf("found = %+v", found)
	}
}

func TestCampaignStore_CreateRejectsInvalid(t *testing.T) {
	db := testDB(t)
	_, err := NewCampaignStore(db).Create(&models.Campaign{ProductName: "No Brand"})
	if err == nil {
		t.Fatal("campaign without a brand must be rejected")
	}
}

func TestCampaignStore_Transition(t *testing.T) {
	db := testDB(t)
	store := NewCampaignStore(db)
	brand := createTestBrand(t, db, "Campaign Transition Test")
	campaign := createTestCampaign(t, db, brand)

	changed, err := store.Transition(campaign.ID, models.CampaignDraft, models.CampaignProcessing)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if !changed {
		t.Fatal("draft -> processing should change the row")
	}

	// The row already moved; a second identical transition loses.
	changed, err = store.Transition(campaign.ID, models.CampaignDraft, models.CampaignProcessing)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if changed {
		t.Error("stale transition should not change the row")
	}

	// Moves missing from the transition table are rejected outright.
	if _, err := store.Transition(campaign.ID, models.CampaignProcessing, models.CampaignDraft); err == nil {
		t.Error("processing -> draft must be rejected")
	}

	found, _ := store.FindByID(campaign.ID)
	if found.Status != models.CampaignProcessing {
		t.Errorf("status = %s, want processing", found.Status)
	}
}

func TestCampaignStore_DeleteCascadesToCreatives(t *testing.T) {
	db := testDB(t)
	store := NewCampaignStore(db)
	brand := createTestBrand(t, db, "Campaign Delete Test")
	campaign := createTestCampaign(t, db, brand)
	createTestCreatives(t, db, campaign)

	if err := store.Delete(campaign.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	left, _ := NewCreativeStore(db).ListByCampaign(campaign.ID)
	if len(left) != 0 {
		t.Errorf("%d creatives survived the cascade", len(left))
	}
}

func TestCampaignStore_FindMissing(t *testing.T) {
	db := testDB(t)
	if _, err := NewCampaignStore(db).FindByID(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID on missing campaign = %v, want ErrNotFound", err)
	}
}
