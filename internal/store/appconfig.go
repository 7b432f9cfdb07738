// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/michal-danieluk/adforge/internal/models"
)

// AppConfigStore manages the singleton generation settings record. Reads
// are uncached: provider clients look the key up at call time, so a
// rotation applies to the next call. Updates are last-writer-wins.
type AppConfigStore struct {
	db *sql.DB
}

// NewAppConfigStore returns a new AppConfigStore backed by the given database.
func NewAppConfigStore(db *sql.DB) *AppConfigStore {
	return &AppConfigStore{db: db}
}

// Current returns the configuration record, or nil if none has been
// created yet.
func (s *AppConfigStore) Current() (*models.AppConfig, error) {
	cfg := &models.AppConfig{}
	err := s.db.QueryRow(`
		SELECT api_key, image_model_id, updated_at FROM app_config WHERE id = 1
	`).Scan(&cfg.APIKey, &cfg.ImageModelID, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current app config: %w", err)
	}
	return cfg, nil
}

// Create inserts the singleton record. A second create is rejected with
// ErrSingletonExists.
func (s *AppConfigStore) Create(cfg *models.AppConfig) error {
	res, err := s.db.Exec(`
		INSERT INTO app_config (id, api_key, image_model_id, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, cfg.APIKey, cfg.ImageModelID, time.Now())
	if err != nil {
		return fmt.Errorf("create app config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSingletonExists
	}
	return nil
}

// Update overwrites the singleton record. Returns ErrNotFound if it has
// never been created.
func (s *AppConfigStore) Update(cfg *models.AppConfig) error {
	res, err := s.db.Exec(`
		UPDATE app_config SET api_key = $1, image_model_id = $2, updated_at = $3
		WHERE id = 1
	`, cfg.APIKey, cfg.ImageModelID, time.Now())
	if err != nil {
		return fmt.Errorf("update app config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
