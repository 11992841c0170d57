// Package repository persists the engine's aggregates in Postgres.
// Sentinel errors declared here are shared by every store so the
// service layer can distinguish expected lookup misses and stale
// writes from infrastructure failures.
package repository

import "errors"

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned by Replace when the aggregate was
// modified since it was read. Callers re-read and retry.
var ErrVersionConflict = errors.New("version conflict")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("duplicate record")
