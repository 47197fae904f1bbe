package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartKey is the storage key the cart is mirrored under
const CartKey = "cart"

// CartRepository implements cart.CartRepository over a key-value store.
// The cart is stored as a JSON array of line items.
type CartRepository struct {
	store  shared.KeyValueStore
	logger *zap.Logger
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(store shared.KeyValueStore, logger *zap.Logger) *CartRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartRepository{store: store, logger: logger}
}

// Save writes the full cart, replacing the previous value
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c.Items())
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.store.Set(ctx, CartKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Load reads the stored cart. A missing key gives an empty cart, and so does
// stored content that cannot be decoded or breaks the cart invariants.
// Only storage read failures are returned as errors.
func (r *CartRepository) Load(ctx context.Context) (*cart.Cart, error) {
	data, err := r.store.Get(ctx, CartKey)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []cart.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		r.warnCorrupt(err)
		return cart.New(), nil
	}

	c, err := cart.FromItems(items)
	if err != nil {
		r.warnCorrupt(err)
		return cart.New(), nil
	}
	return c, nil
}

func (r *CartRepository) warnCorrupt(err error) {
	r.logger.Warn("stored cart is corrupt, starting with an empty cart",
		zap.String("code", shared.ErrStorageCorrupt.Code),
		zap.String("key", CartKey),
		zap.Error(err),
	)
}

// Ensure CartRepository implements the interface
var _ cart.CartRepository = (*CartRepository)(nil)
