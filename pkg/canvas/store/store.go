// Package store provides durable key-value persistence for canvas
// snapshots. Keys are opaque user-scoped strings; values are whole
// serialized node collections, overwritten in full on every save.
package store

import (
	"errors"
	"time"
)

// Store persists canvas snapshots keyed by user.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot for a key, overwriting any previous value.
	Save(key string, data []byte) error

	// Load retrieves the snapshot for a key.
	// Returns ErrNotFound if the key has no snapshot.
	Load(key string) ([]byte, error)

	// Delete removes the snapshot for a key.
	// Returns nil if the key doesn't exist.
	Delete(key string) error

	// Keys returns all keys with a stored snapshot.
	Keys() ([]string, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides snapshot metadata without loading the data.
type Info struct {
	Key       string
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a key has no stored snapshot.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)
