// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/michal-danieluk/adforge/internal/models"
)

// CreativeStore handles all creative-related database operations. Batch
// creation is transactional (all three rows or none), and every status
// change is a conditional update so concurrent render jobs for the same
// creative cannot race on the status column.
type CreativeStore struct {
	db *sql.DB
}

// NewCreativeStore creates a new CreativeStore with the given database connection.
func NewCreativeStore(db *sql.DB) *CreativeStore {
	return &CreativeStore{db: db}
}

const creativeColumns = `id, campaign_id, headline, body, background_prompt, status,
       ai_metadata, raw_image_key, final_image_key, created_at, updated_at`

// CreateBatch inserts a batch of pending creatives in one transaction.
// Either every creative is persisted or none are.
func (s *CreativeStore) CreateBatch(campaignID uuid.UUID, creatives []models.Creative) ([]models.Creative, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create creatives begin: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.Creative, 0, len(creatives))
	for i, c := range creatives {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal creative metadata: %w", err)
		}

		var inserted models.Creative
		var rawMeta []byte
		err = tx.QueryRow(`
			INSERT INTO creatives (campaign_id, headline, body, background_prompt, status, ai_metadata)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+creativeColumns+`
		`, campaignID, c.Headline, c.Body, c.BackgroundPrompt, models.CreativePending, meta).Scan(
			&inserted.ID, &inserted.CampaignID, &inserted.Headline, &inserted.Body,
			&inserted.BackgroundPrompt, &inserted.Status, &rawMeta,
			&inserted.RawImageKey, &inserted.FinalImageKey,
			&inserted.CreatedAt, &inserted.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert creative %d: %w", i, err)
		}
		if err := json.Unmarshal(rawMeta, &inserted.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal creative metadata: %w", err)
		}
		out = append(out, inserted)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create creatives commit: %w", err)
	}
	return out, nil
}

// FindByID retrieves a creative by its UUID. Returns ErrNotFound if missing.
func (s *CreativeStore) FindByID(id uuid.UUID) (*models.Creative, error) {
	row := s.db.QueryRow(`SELECT `+creativeColumns+` FROM creatives WHERE id = $1`, id)
	c, err := scanCreative(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find creative by id: %w", err)
	}
	return c, nil
}

// ListByCampaign returns a campaign's creatives in creation order.
func (s *CreativeStore) ListByCampaign(campaignID uuid.UUID) ([]models.Creative, error) {
	rows, err := s.db.Query(`
		SELECT `+creativeColumns+` FROM creatives
		WHERE campaign_id = $1 ORDER BY created_at
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list creatives: %w", err)
	}
	defer rows.Close()

	var items []models.Creative
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan creative: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ClaimForRender moves a pending creative to generating. Exactly one caller
// wins; a duplicate job delivery finds the row already claimed (or already
// resolved) and gets claimed=false.
func (s *CreativeStore) ClaimForRender(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE creatives SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.CreativeGenerating, id, models.CreativePending)
	if err != nil {
		return false, fmt.Errorf("claim creative: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// ReleaseClaim moves a generating creative back to pending so a later
// attempt can claim it again. Used between render retries.
func (s *CreativeStore) ReleaseClaim(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE creatives SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.CreativePending, id, models.CreativeGenerating)
	if err != nil {
		return fmt.Errorf("release creative claim: %w", err)
	}
	return nil
}

// MarkGenerated records the rendered assets and moves the creative to
// generated. Only the claim holder (status = generating) can succeed, so a
// stale or duplicate job cannot overwrite an existing final image.
func (s *CreativeStore) MarkGenerated(id uuid.UUID, rawKey, finalKey string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE creatives
		SET status = $1, raw_image_key = $2, final_image_key = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, models.CreativeGenerated, rawKey, finalKey, id, models.CreativeGenerating)
	if err != nil {
		return false, fmt.Errorf("mark creative generated: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// MarkFailed moves a pending or generating creative to failed and merges
// the error message into its metadata without touching the other keys.
func (s *CreativeStore) MarkFailed(id uuid.UUID, message string) error {
	res, err := s.db.Exec(`
		UPDATE creatives
		SET status = $1,
		    ai_metadata = ai_metadata || jsonb_build_object('error', $2::text),
		    updated_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)
	`, models.CreativeFailed, message, id, models.CreativePending, models.CreativeGenerating)
	if err != nil {
		return fmt.Errorf("mark creative failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnresolved returns how many of a campaign's creatives are still
// pending or generating. Zero means every image stage has resolved.
func (s *CreativeStore) CountUnresolved(campaignID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM creatives
		WHERE campaign_id = $1 AND status IN ($2, $3)
	`, campaignID, models.CreativePending, models.CreativeGenerating).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unresolved creatives: %w", err)
	}
	return count, nil
}

// DeleteByCampaign removes all of a campaign's creatives. Used when a
// failed campaign is resubmitted and its lineage regenerated from scratch.
func (s *CreativeStore) DeleteByCampaign(campaignID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM creatives WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return fmt.Errorf("delete creatives: %w", err)
	}
	return nil
}

// TotalCostCents sums the stored cost shares across all creatives.
func (s *CreativeStore) TotalCostCents() (int, error) {
	var total int
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM((ai_metadata->>'cost_cents')::int), 0) FROM creatives
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total creative cost: %w", err)
	}
	return total, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCreative(row scanner) (*models.Creative, error) {
	c := &models.Creative{}
	var rawMeta []byte
	err := row.Scan(
		&c.ID, &c.CampaignID, &c.Headline, &c.Body,
		&c.BackgroundPrompt, &c.Status, &rawMeta,
		&c.RawImageKey, &c.FinalImageKey,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal creative metadata: %w", err)
		}
	}
	return c, nil
}
