package store

import (
	"context"
	"errors"
)

// Common errors returned by the store
var (
	ErrNotFound = errors.New("key not found")
)

// KV is the raw persistence substrate behind the intent store: a shared,
// multi-reader/multi-writer key-value area with last-write-wins semantics
// at the granularity of a full key write. No locking or cross-key
// transaction is provided; concurrent contexts may interleave freely.
type KV interface {
	// Get returns the stored value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
