// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

// BrandStore handles all brand-related database operations, including the
// nested color palette. Saves validate the brand invariants first, so a
// brand with zero colors or a primary count other than one never reaches
// the database.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore creates a new BrandStore with the given database connection.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

// Create inserts a brand and its colors in one transaction.
func (s *BrandStore) Create(b *models.Brand) (*models.Brand, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create brand begin: %w", err)
	}
	defer tx.Rollback()

	result := &models.Brand{}
	err = tx.QueryRow(`
		INSERT INTO brands (name, tone_of_voice, logo_key)
		VALUES ($1, $2, $3)
		RETURNING id, name, tone_of_voice, logo_key, created_at, updated_at
	`, b.Name, b.ToneOfVoice, b.LogoKey).Scan(
		&result.ID, &result.Name, &result.ToneOfVoice, &result.LogoKey,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}

	result.Colors, err = insertColors(tx, result.ID, b.Colors)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create brand commit: %w", err)
	}
	return result, nil
}

// FindByID retrieves a brand with its color palette. Returns ErrNotFound
// if no brand exists with the given ID.
func (s *BrandStore) FindByID(id uuid.UUID) (*models.Brand, error) {
	b := &models.Brand{}
	err := s.db.QueryRow(`
		SELECT id, name, tone_of_voice, logo_key, created_at, updated_at
		FROM brands WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.ToneOfVoice, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find brand by id: %w", err)
	}

	if b.Colors, err = s.colorsFor(b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all brands with their palettes, newest first.
func (s *BrandStore) List() ([]models.Brand, error) {
	rows, err := s.db.Query(`
		SELECT id, name, tone_of_voice, logo_key, created_at, updated_at
		FROM brands ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.ToneOfVoice, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range brands {
		if brands[i].Colors, err = s.colorsFor(brands[i].ID); err != nil {
			return nil, err
		}
	}
	return brands, nil
}

// Update modifies a brand and replaces its color palette in one transaction.
func (s *BrandStore) Update(b *models.Brand) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update brand begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE brands SET name = $1, tone_of_voice = $2, logo_key = $3, updated_at = NOW()
		WHERE id = $4
	`, b.Name, b.ToneOfVoice, b.LogoKey, b.ID)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM brand_colors WHERE brand_id = $1`, b.ID); err != nil {
		return fmt.Errorf("update brand colors: %w", err)
	}
	if _, err := insertColors(tx, b.ID, b.Colors); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update brand commit: %w", err)
	}
	return nil
}

// SetLogo records the object storage key of an uploaded logo.
func (s *BrandStore) SetLogo(id uuid.UUID, key string) error {
	res, err := s.db.Exec(`
		UPDATE brands SET logo_key = $1, updated_at = NOW() WHERE id = $2
	`, key, id)
	if err != nil {
		return fmt.Errorf("set brand logo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a brand. Campaigns and creatives cascade at the database level.
func (s *BrandStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// colorsFor loads the palette for one brand, primary first.
func (s *BrandStore) colorsFor(brandID uuid.UUID) ([]models.BrandColor, error) {
	rows, err := s.db.Query(`
		SELECT id, brand_id, hex_value, "primary"
		FROM brand_colors WHERE brand_id = $1
		ORDER BY "primary" DESC, hex_value
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("brand colors: %w", err)
	}
	defer rows.Close()

	var colors []models.BrandColor
	for rows.Next() {
		var c models.BrandColor
		if err := rows.Scan(&c.ID, &c.BrandID, &c.HexValue, &c.Primary); err != nil {
			return nil, fmt.Errorf("scan brand color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// insertColors inserts a palette inside an open transaction.
func insertColors(tx *sql.Tx, brandID uuid.UUID, colors []models.BrandColor) ([]models.BrandColor, error) {
	out := make([]models.BrandColor, 0, len(colors))
	for _, c := range colors {
		var inserted models.BrandColor
		err := tx.QueryRow(`
			INSERT INTO brand_colors (brand_id, hex_value, "primary")
			VALUES ($1, $2, $3)
			RETURNING id, brand_id, hex_value, "primary"
		`, brandID, c.HexValue, c.Primary).Scan(
			&inserted.ID, &inserted.BrandID, &inserted.HexValue, &inserted.Primary,
		)
		if err != nil {
			return nil, fmt.Errorf("insert brand color %s: %w", c.HexValue, err)
		}
		out = append(out, inserted)
	}
	return out, nil
}
