// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ImageGenerator is the capability both image provider variants implement.
// Returns the raw image bytes and the MIME content type.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, model string) ([]byte, string, error)
	Name() string
}

// ImageOptions configures the image provider clients.
type ImageOptions struct {
	Key     KeyFunc
	BaseURL string        // defaults to the Google Generative Language API
	Timeout time.Duration // defaults to 120s; image generation is slow
}

const defaultImageBaseURL = "https://generativelanguage.googleapis.com"

func (o ImageOptions) withDefaults() ImageOptions {
	if o.BaseURL == "" {
		o.BaseURL = defaultImageBaseURL
	}
	if o.Timeout == 0 {
		o.Timeout = 120 * time.Second
	}
	return o
}

// SelectImageGenerator picks the provider variant for a model identifier.
// Models named "imagen-..." speak the predictions API; everything else
// (e.g. "gemini-2.5-flash-image") speaks generateContent with an image
// response modality. This is the only place the model name is sniffed.
func SelectImageGenerator(model string, opts ImageOptions) ImageGenerator {
	opts = opts.withDefaults()
	client := &http.Client{Timeout: opts.Timeout}
	if strings.HasPrefix(model, "imagen") {
		return &imagenClient{opts: opts, client: client}
	}
	return &geminiImageClient{opts: opts, client: client}
}
