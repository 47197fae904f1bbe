package cart

import "context"

// CartRepository persists the single storefront cart
type CartRepository interface {
	// Save replaces the stored cart with c
	Save(ctx context.Context, c *Cart) error

	// Load returns the stored cart. A missing or unreadable cart loads as empty.
	Load(ctx context.Context) (*Cart, error)
}
