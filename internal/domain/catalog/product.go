package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product represents a sample product in the storefront catalog.
// Products are immutable once generated.
type Product struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Description   string           `json:"description"`
	InStock       bool             `json:"inStock"`
}

// NewProduct creates a product with the required fields set
func NewProduct(id int, name, category string, price decimal.Decimal) (Product, error) {
	if id <= 0 {
		return Product{}, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID must be positive")
	}
	if err := validateProductName(name); err != nil {
		return Product{}, err
	}
	if strings.TrimSpace(category) == "" {
		return Product{}, shared.NewDomainError("INVALID_CATEGORY", "Product category cannot be empty")
	}
	if price.IsNegative() {
		return Product{}, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       price,
		Description: describe(name),
		InStock:     true,
	}, nil
}

// Savings returns how much cheaper the product is than its original price.
// The second value is false when no original price is known.
func (p Product) Savings() (decimal.Decimal, bool) {
	if p.OriginalPrice == nil {
		return decimal.Zero, false
	}
	return p.OriginalPrice.Sub(p.Price), true
}

// Stars renders the rating as five filled/empty stars
func (p Product) Stars() string {
	full := int(p.Rating)
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

func describe(name string) string {
	return "High-quality " + strings.ToLower(name) + " perfect for your needs."
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
