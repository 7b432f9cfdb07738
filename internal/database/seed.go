// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed inserts a demo brand and campaign for development environments.
// It is a no-op when any brand already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM brands`).Scan(&count); err != nil {
		return fmt.Errorf("seed count brands: %w", err)
	}
	if count > 0 {
		return nil
	}

	var brandID string
	err := db.QueryRow(`
		INSERT INTO brands (name, tone_of_voice)
		VALUES ('Northwind Coffee', 'friendly')
		RETURNING id
	`).Scan(&brandID)
	if err != nil {
		return fmt.Errorf("seed brand: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO brand_colors (brand_id, hex_value, "primary")
		VALUES ($1, '#6F4E37', TRUE), ($1, '#F5E6D3', FALSE)
	`, brandID)
	if err != nil {
		return fmt.Errorf("seed brand colors: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO campaigns (brand_id, product_name, target_audience, description, status)
		VALUES ($1, 'Single-origin espresso subscription', 'urban remote workers 25-40',
		        'Monthly rotating roasts delivered to the door.', 'draft')
	`, brandID)
	if err != nil {
		return fmt.Errorf("seed campaign: %w", err)
	}

	slog.Info("development data seeded", "brand", "Northwind Coffee")
	return nil
}
