package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/storefront/backend/internal/domain/shared"
)

// CatalogSeedKey is the storage key of the pinned catalog seed
const CatalogSeedKey = "catalogSeed"

// SeedRepository keeps the catalog generation seed, so every process sharing
// a store generates the same catalog
type SeedRepository struct {
	store shared.KeyValueStore
}

// NewSeedRepository creates a new SeedRepository
func NewSeedRepository(store shared.KeyValueStore) *SeedRepository {
	return &SeedRepository{store: store}
}

// Pin returns the stored seed, storing fallback first when none exists
func (r *SeedRepository) Pin(ctx context.Context, fallback uint64) (uint64, error) {
	value, err := r.store.Get(ctx, CatalogSeedKey)
	switch {
	case err == nil:
		seed, parseErr := strconv.ParseUint(string(value), 10, 64)
		if parseErr == nil {
			return seed, nil
		}
		// unreadable value, replace it
	case !errors.Is(err, shared.ErrKeyNotFound):
		return 0, fmt.Errorf("failed to read catalog seed: %w", err)
	}

	if err := r.store.Set(ctx, CatalogSeedKey, []byte(strconv.FormatUint(fallback, 10))); err != nil {
		return 0, fmt.Errorf("failed to save catalog seed: %w", err)
	}
	return fallback, nil
}
