// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package imaging post-processes AI-generated backgrounds using libvips.
// Provider output arrives in whatever size and format the model chose; the
// pipeline normalizes it to one canonical square PNG before attaching it
// as the final creative image.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// CanvasSize is the canonical edge length of a final creative image.
const CanvasSize = 1080

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// Square resizes and centre-crops the image to a size×size PNG. Metadata
// is stripped so identical input bytes produce identical output bytes.
func Square(data []byte, size int) ([]byte, error) {
	img, err := vips.NewThumbnailWithSizeFromBuffer(data, size, size, vips.InterestingCentre, vips.SizeBoth)
	if err != nil {
		return nil, fmt.Errorf("imaging: thumbnail %dpx: %w", size, err)
	}
	defer img.Close()

	params := vips.NewPngExportParams()
	params.StripMetadata = true

	buf, _, err := img.ExportPng(params)
	if err != nil {
		return nil, fmt.Errorf("imaging: export png: %w", err)
	}
	return buf, nil
}

// SquareCanvas applies Square at the canonical creative resolution.
func SquareCanvas(data []byte) ([]byte, error) {
	return Square(data, CanvasSize)
}
