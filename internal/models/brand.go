// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package models defines the domain entities of the creative pipeline:
// brands, campaigns, creatives, and the process-wide AppConfig. Status
// fields are closed enumerations with explicit transition tables; anything
// not listed in a table is rejected.
package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ToneOfVoice describes how a brand communicates in generated ad copy.
type ToneOfVoice string

const (
	ToneProfessional  ToneOfVoice = "professional"
	ToneCasual        ToneOfVoice = "casual"
	ToneFriendly      ToneOfVoice = "friendly"
	ToneAuthoritative ToneOfVoice = "authoritative"
)

// Valid reports whether the tone is one of the supported values.
func (t ToneOfVoice) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneFriendly, ToneAuthoritative:
		return true
	}
	return false
}

// hexColorRe matches a 6-digit hex color with leading hash, e.g. "#FF5733".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Brand is the identity a campaign borrows its tone and palette from.
// Deleting a brand cascades to its campaigns (enforced in the store).
type Brand struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	ToneOfVoice ToneOfVoice  `json:"tone_of_voice"`
	Colors      []BrandColor `json:"colors"`
	LogoKey     *string      `json:"logo_key,omitempty"` // object storage key, set once a logo is uploaded
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// BrandColor is one palette entry. Exactly one color per brand carries
// Primary = true.
type BrandColor struct {
	ID       uuid.UUID `json:"id"`
	BrandID  uuid.UUID `json:"brand_id"`
	HexValue string    `json:"hex_value"`
	Primary  bool      `json:"primary"`
}

// PrimaryColor returns the hex value of the primary color, or "#000000"
// if the palette is somehow empty (valid brands always have one).
func (b *Brand) PrimaryColor() string {
	for _, c := range b.Colors {
		if c.Primary {
			return c.HexValue
		}
	}
	return "#000000"
}

// Validate checks the invariants a brand must satisfy before it may be
// persisted: a name, a known tone, at least one color, every color a valid
// 6-digit hex value, and exactly one primary color.
func (b *Brand) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("brand: name is required")
	}
	if !b.ToneOfVoice.Valid() {
		return fmt.Errorf("brand: unknown tone of voice %q", b.ToneOfVoice)
	}
	if len(b.Colors) == 0 {
		return fmt.Errorf("brand: must have at least one color")
	}
	primaries := 0
	for _, c := range b.Colors {
		if !hexColorRe.MatchString(c.HexValue) {
			return fmt.Errorf("brand: %q is not a valid hex color", c.HexValue)
		}
		if c.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		return fmt.Errorf("brand: must have exactly one primary color, has %d", primaries)
	}
	return nil
}
