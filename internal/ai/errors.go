// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package ai provides typed HTTP clients for the two external AI providers
// the pipeline depends on: an OpenAI-compatible text endpoint for concept
// generation and the Google image generation endpoints (Imagen predictions
// and Gemini generateContent) for backgrounds. Clients raise typed errors
// and never retry; retry policy lives in the pipeline orchestrator.
package ai

import "fmt"

// ConfigError means the client cannot make the call at all: the API key is
// missing or unusable. Fatal; surfaced to the user as "configure API key".
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "ai: " + e.Reason
}

// ProviderError is a non-2xx HTTP response from a provider. Transient from
// the pipeline's point of view (rate limits, overload, flapping backends).
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// MalformedResponseError means the provider returned 2xx but the body did
// not match the expected shape. Non-retryable: the same request would get
// the same malformed answer.
type MalformedResponseError struct {
	Provider string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Provider, e.Reason)
}

// EmptyImageDataError means the image provider reported success but carried
// no usable image payload. Treated as transient; these calls sometimes
// succeed on retry.
type EmptyImageDataError struct {
	Provider string
}

func (e *EmptyImageDataError) Error() string {
	return e.Provider + ": no image data in response"
}
