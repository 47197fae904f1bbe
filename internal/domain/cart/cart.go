package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartItem is a snapshot of a product taken when it was added, plus quantity.
// The JSON field names are the persisted format.
type CartItem struct {
	ProductID     int              `json:"productId"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Description   string           `json:"description"`
	InStock       bool             `json:"inStock"`
	Quantity      int              `json:"quantity"`
}

// NewItemFromProduct snapshots p with quantity 1
func NewItemFromProduct(p catalog.Product) CartItem {
	item := CartItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		Description: p.Description,
		InStock:     p.InStock,
		Quantity:    1,
	}
	if p.OriginalPrice != nil {
		original := *p.OriginalPrice
		item.OriginalPrice = &original
	}
	return item
}

// Subtotal returns price times quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the shopper's cart. It holds at most one line per product and
// every line has a quantity of at least one. Lines keep insertion order.
type Cart struct {
	shared.BaseAggregateRoot
	items []CartItem
}

// New creates an empty cart
func New() *Cart {
	return &Cart{items: make([]CartItem, 0)}
}

// FromItems rebuilds a cart from persisted lines and checks its invariants
func FromItems(items []CartItem) (*Cart, error) {
	c := &Cart{items: slices.Clone(items)}
	if c.items == nil {
		c.items = make([]CartItem, 0)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Add increments the line for item.ProductID, or appends item with quantity 1
func (c *Cart) Add(item CartItem) {
	if idx := c.indexOf(item.ProductID); idx >= 0 {
		c.items[idx].Quantity++
	} else {
		item.Quantity = 1
		c.items = append(c.items, item)
	}
	c.AddDomainEvent(NewCartChangedEvent(c, ChangeAdded, item.ProductID))
}

// Remove drops the line for productID. It returns false when there was none.
func (c *Cart) Remove(productID int) bool {
	idx := c.indexOf(productID)
	if idx < 0 {
		return false
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.AddDomainEvent(NewCartChangedEvent(c, ChangeRemoved, productID))
	return true
}

// Count returns the sum of quantities
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total returns the sum of price times quantity, rounded to two decimals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// Items returns a copy of the lines in insertion order
func (c *Cart) Items() []CartItem {
	return slices.Clone(c.items)
}

// Clone returns an independent copy of the cart without pending events
func (c *Cart) Clone() *Cart {
	return &Cart{items: slices.Clone(c.items)}
}

// Validate checks the cart invariants
func (c *Cart) Validate() error {
	seen := make(map[int]struct{}, len(c.items))
	for _, item := range c.items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: product %d has quantity %d", shared.ErrStorageCorrupt, item.ProductID, item.Quantity)
		}
		if _, ok := seen[item.ProductID]; ok {
			return fmt.Errorf("%w: duplicate line for product %d", shared.ErrStorageCorrupt, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

func (c *Cart) indexOf(productID int) int {
	return slices.IndexFunc(c.items, func(item CartItem) bool {
		return item.ProductID == productID
	})
}
