// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

// CampaignStore handles all campaign-related database operations. Status
// changes go through Transition, a conditional single-row update, so two
// jobs racing on the same campaign cannot both win.
type CampaignStore struct {
	db *sql.DB
}

// NewCampaignStore creates a new CampaignStore with the given database connection.
func NewCampaignStore(db *sql.DB) *CampaignStore {
	return &CampaignStore{db: db}
}

// Create inserts a new campaign in draft status.
func (s *CampaignStore) Create(c *models.Campaign) (*models.Campaign, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &models.Campaign{}
	err := s.db.QueryRow(`
		INSERT INTO campaigns (brand_id, product_name, target_audience, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, brand_id, product_name, target_audience, description, status, created_at, updated_at
	`, c.BrandID, c.ProductName, c.TargetAudience, c.Description, models.CampaignDraft).Scan(
		&result.ID, &result.BrandID, &result.ProductName, &result.TargetAudience,
		&result.Description, &result.Status, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return result, nil
}

// FindByID retrieves a campaign by its UUID. Returns ErrNotFound if missing.
func (s *CampaignStore) FindByID(id uuid.UUID) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := s.db.QueryRow(`
		SELECT id, brand_id, product_name, target_audience, description, status, created_at, updated_at
		FROM campaigns WHERE id = $1
	`, id).Scan(
		&c.ID, &c.BrandID, &c.ProductName, &c.TargetAudience,
		&c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign by id: %w", err)
	}
	return c, nil
}

// List returns all campaigns, newest first.
func (s *CampaignStore) List() ([]models.Campaign, error) {
	rows, err := s.db.Query(`
		SELECT id, brand_id, product_name, target_audience, description, status, created_at, updated_at
		FROM campaigns ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var items []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(
			&c.ID, &c.BrandID, &c.ProductName, &c.TargetAudience,
			&c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Transition moves a campaign from one status to another. The move must be
// listed in the campaign transition table, and the row must still be in the
// from status when the update lands; otherwise nothing changes and false is
// returned. This is the per-entity serialization point for campaign status.
func (s *CampaignStore) Transition(id uuid.UUID, from, to models.CampaignStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("campaign: transition %s -> %s not allowed", from, to)
	}

	res, err := s.db.Exec(`
		UPDATE campaigns SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("transition campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// Delete removes a campaign and, via cascade, its creatives.
func (s *CampaignStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
