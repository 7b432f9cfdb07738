// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package models

import "time"

// AppConfig is the process-wide generation settings record: the active
// provider API key and the selected image model. Exactly one row exists;
// the store rejects attempts to create a second. Providers read it at call
// time, so a rotated key applies to the next call without a restart.
type AppConfig struct {
	APIKey       string    `json:"-"` // never serialized to API responses
	ImageModelID string    `json:"image_model_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasKey reports whether an API key has been configured.
func (c *AppConfig) HasKey() bool {
	return c != nil && c.APIKey != ""
}
