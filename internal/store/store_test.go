// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/michal-danieluk/adforge/internal/database"
	"github.com/michal-danieluk/adforge/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "adforge")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "adforge")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestBrand inserts a brand and registers cleanup. Deleting the brand
// cascades to its campaigns and creatives.
func createTestBrand(t *testing.T, db *sql.DB, name string) *models.Brand {
	t.Helper()
	brands := NewBrandStore(db)
	brand, err := brands.Create(&models.Brand{
		Name:        name,
		ToneOfVoice: models.ToneCasual,
		Colors: []models.BrandColor{
			{HexValue: "#112233", Primary: true},
			{HexValue: "#AABBCC"},
		},
	})
	if err != nil {
		t.Fatalf("create test brand: %v", err)
	}
	t.Cleanup(func() { brands.Delete(brand.ID) })
	return brand
}

// createTestCampaign inserts a draft campaign under the given brand.
func createTestCampaign(t *testing.T, db *sql.DB, brand *models.Brand) *models.Campaign {
	t.Helper()
	campaigns := NewCampaignStore(db)
	campaign, err := campaigns.Create(&models.Campaign{
		BrandID:        brand.ID,
		ProductName:    "Test Product",
		TargetAudience: "test audience",
	})
	if err != nil {
		t.Fatalf("create test campaign: %v", err)
	}
	return campaign
}

// createTestCreatives inserts a three-creative pending batch.
func createTestCreatives(t *testing.T, db *sql.DB, campaign *models.Campaign) []models.Creative {
	t.Helper()
	creatives := NewCreativeStore(db)
	batch, err := creatives.CreateBatch(campaign.ID, []models.Creative{
		{Headline: "One", Body: "a", BackgroundPrompt: "pa", Metadata: models.AIMetadata{CostCents: 3}},
		{Headline: "Two", Body: "b", BackgroundPrompt: "pb", Metadata: models.AIMetadata{CostCents: 3}},
		{Headline: "Three", Body: "c", BackgroundPrompt: "pc", Metadata: models.AIMetadata{CostCents: 3}},
	})
	if err != nil {
		t.Fatalf("create test creatives: %v", err)
	}
	return batch
}
