// Package repository persists the serialized workout list, the local
// key-value storage of the tracker.
package repository

import "context"

// Store saves and loads one serialized blob under a fixed key.
type Store interface {
	// Save replaces the stored blob.
	Save(ctx context.Context, data []byte) error

	// Load returns the stored blob.
	// Returns ErrNotFound if nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Clear removes the stored blob. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
