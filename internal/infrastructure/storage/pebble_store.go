package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PebbleStore implements shared.KeyValueStore on a local Pebble database
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) a Pebble database in dir.
// Pebble's own messages are written to logger.
func NewPebbleStore(dir string, logger *zap.Logger) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), pebbleOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func pebbleOptions(logger *zap.Logger) *pebble.Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pebble.Options{
		// The store holds a handful of small keys
		MemTableSize: 4 << 20,
		Logger:       logger.Sugar(),
	}
}

// Get implements shared.KeyValueStore
func (s *PebbleStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, shared.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()

	// value is only valid until closer is closed
	return slices.Clone(value), nil
}

// Set implements shared.KeyValueStore. Writes are synced so they survive a crash.
func (s *PebbleStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

// Close implements shared.KeyValueStore
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
