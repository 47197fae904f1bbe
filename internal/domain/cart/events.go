package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeCartChanged = "cart.changed"
)

// Change kinds carried by CartChangedEvent
const (
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
	ChangeRestored = "restored"
)

// CartChangedEvent is raised after every cart mutation and when a persisted
// cart is restored
type CartChangedEvent struct {
	shared.BaseDomainEvent
	Change    string          `json:"change"`
	ProductID int             `json:"product_id"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}

// NewCartChangedEvent creates a CartChangedEvent carrying the cart's new count and total
func NewCartChangedEvent(c *Cart, change string, productID int) *CartChangedEvent {
	return &CartChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartChanged, AggregateTypeCart),
		Change:          change,
		ProductID:       productID,
		Count:           c.Count(),
		Total:           c.Total(),
	}
}
