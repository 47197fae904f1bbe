package storefront

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
)

// Status is the catalog loading state
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// EmptyViewMessage is shown when the view has no products
const EmptyViewMessage = "No products found matching your criteria."

// CatalogStatus describes the catalog loading state
type CatalogStatus struct {
	Status       Status `json:"status"`
	Message      string `json:"message,omitempty"`
	ProductCount int    `json:"product_count"`
}

// ViewState is everything a renderer needs to draw the product grid
type ViewState struct {
	Query      string            `json:"query"`
	Categories []string          `json:"categories"`
	MaxPrice   decimal.Decimal   `json:"max_price"`
	SortKey    catalog.SortKey   `json:"sort_key"`
	Products   []catalog.Product `json:"products"`
	Message    string            `json:"message,omitempty"`
}

// CartSummary is a read-only snapshot of the cart
type CartSummary struct {
	Items []cart.CartItem `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func summarize(c *cart.Cart) CartSummary {
	return CartSummary{
		Items: c.Items(),
		Count: c.Count(),
		Total: c.Total(),
	}
}
