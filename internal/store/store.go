// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package store implements the persistence layer: one store per entity over
// a shared *sql.DB, enforcing the domain invariants at the boundary (brand
// color rules, all-or-none creative batches, the AppConfig singleton, and
// conditional status transitions for per-row serialization).
package store

import "errors"

// ErrNotFound is returned when the requested entity does not exist. The
// pipeline treats it as a discard-class error: the job is dropped without
// consuming a retry.
var ErrNotFound = errors.New("store: not found")

// ErrSingletonExists is returned when a second AppConfig record is created.
var ErrSingletonExists = errors.New("store: app config already exists")
