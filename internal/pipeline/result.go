// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"errors"

	"github.com/michal-danieluk/adforge/internal/ai"
	"github.com/michal-danieluk/adforge/internal/store"
)

// InvalidInputError means a stage was invoked with input that can never
// succeed (e.g. an empty background prompt). Fatal; no provider call is
// made.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "pipeline: invalid input: " + e.Reason
}

// ValidationError means the concept response violated the structural
// contract (wrong count, missing fields). Non-retryable: the model would
// get the identical prompt and schema again.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "pipeline: concept validation: " + e.Reason
}

// disposition is what the orchestrator does with a stage error.
type disposition int

const (
	// retryable: expected to sometimes self-resolve (non-2xx, timeouts,
	// empty-but-successful image responses).
	retryable disposition = iota
	// fatal: retrying cannot fix it (missing credentials, malformed
	// schema, invalid input). Consumes no further attempts.
	fatal
	// discard: the target entity no longer exists. Dropped without
	// touching the retry budget and without marking anything failed.
	discard
)

// classify maps a stage error onto the retry policy. Unknown errors are
// treated as transient, mirroring the source system's retry-on-anything
// default with fatal carve-outs.
func classify(err error) disposition {
	if errors.Is(err, store.ErrNotFound) {
		return discard
	}

	var configErr *ai.ConfigError
	var malformedErr *ai.MalformedResponseError
	var validationErr *ValidationError
	var inputErr *InvalidInputError
	switch {
	case errors.As(err, &configErr),
		errors.As(err, &malformedErr),
		errors.As(err, &validationErr),
		errors.As(err, &inputErr):
		return fatal
	}

	// ProviderError, EmptyImageDataError, deadline, and transport errors
	// all land here.
	return retryable
}
