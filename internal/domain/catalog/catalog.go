package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Catalog holds the full product set and the derived view shown to shoppers.
//
// The view is always rebuilt from the full set by Search and ApplyFilters,
// and re-ordered by ApplySorting. Search and ApplyFilters do not compose:
// each one starts again from the full set and discards the other's effect.
type Catalog struct {
	products []Product
	view     []Product
	sortKey  SortKey
}

// New creates a catalog whose view shows every product in generation order
func New(products []Product) *Catalog {
	c := &Catalog{sortKey: SortDefault}
	c.Reset(products)
	return c
}

// Reset replaces the full product set and shows all of it.
// The current sort key is kept but not applied.
func (c *Catalog) Reset(products []Product) {
	c.products = slices.Clone(products)
	c.view = slices.Clone(products)
	if c.sortKey == "" {
		c.sortKey = SortDefault
	}
}

// Search filters the full product set to products whose name, category or
// description contains query, ignoring case. An empty query matches everything.
func (c *Catalog) Search(query string) []Product {
	folder := cases.Fold()
	needle := folder.String(query)

	view := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if needle == "" ||
			strings.Contains(folder.String(p.Name), needle) ||
			strings.Contains(folder.String(p.Category), needle) ||
			strings.Contains(folder.String(p.Description), needle) {
			view = append(view, p)
		}
	}
	c.view = view
	return c.View()
}

// ApplyFilters keeps products whose category is selected (or every category
// when none is selected) and whose price does not exceed maxPrice, then
// re-sorts with the current sort key.
func (c *Catalog) ApplyFilters(selectedCategories []string, maxPrice decimal.Decimal) []Product {
	selected := make(map[string]struct{}, len(selectedCategories))
	for _, cat := range selectedCategories {
		selected[cat] = struct{}{}
	}

	view := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if !matchesFilters(p, selected, maxPrice) {
			continue
		}
		view = append(view, p)
	}
	c.view = view
	return c.ApplySorting(c.sortKey)
}

// ApplySorting records key as the current sort key and stably re-orders the view.
// Unknown keys leave the order untouched.
func (c *Catalog) ApplySorting(key SortKey) []Product {
	c.sortKey = ParseSortKey(string(key))
	if compare := comparator(c.sortKey); compare != nil {
		slices.SortStableFunc(c.view, compare)
	}
	return c.View()
}

// View returns a copy of the current filtered and sorted view
func (c *Catalog) View() []Product {
	return slices.Clone(c.view)
}

// Products returns a copy of the full product set
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Product finds a product by ID in the full set
func (c *Catalog) Product(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Categories returns the distinct categories of the full set in first-seen order
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// SortKey returns the current sort key
func (c *Catalog) SortKey() SortKey {
	return c.sortKey
}

// Len returns the size of the full product set
func (c *Catalog) Len() int {
	return len(c.products)
}

func matchesFilters(p Product, selected map[string]struct{}, maxPrice decimal.Decimal) bool {
	if len(selected) > 0 {
		if _, ok := selected[p.Category]; !ok {
			return false
		}
	}
	return p.Price.LessThanOrEqual(maxPrice)
}
