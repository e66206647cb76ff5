// Package repository holds the storage-level sentinel errors shared by every
// persistence backend.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional write finds a newer version
	ErrConflict = errors.New("conflict: entity was modified concurrently")

	// ErrDuplicate is returned when an insert collides with an existing key
	ErrDuplicate = errors.New("duplicate key")
)
