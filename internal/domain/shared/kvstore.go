package shared

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when the key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the durable storage the storefront persists its state into.
// Values survive process restarts for every backend except the in-memory one.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the underlying resources
	Close() error
}
