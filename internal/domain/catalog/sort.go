package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the catalog view
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

// SortKeys lists every recognised sort key
var SortKeys = []SortKey{SortDefault, SortName, SortPriceLow, SortPriceHigh, SortRating}

// ParseSortKey matches key exactly against SortKeys. Anything else,
// including a differently cased key, falls back to SortDefault.
func ParseSortKey(key string) SortKey {
	if k := SortKey(key); slices.Contains(SortKeys, k) {
		return k
	}
	return SortDefault
}

// comparator returns the ordering function for key, or nil for SortDefault.
// A collator keeps state, so each call builds its own.
func comparator(key SortKey) func(a, b Product) int {
	switch key {
	case SortName:
		c := collate.New(language.English)
		return func(a, b Product) int {
			return c.CompareString(a.Name, b.Name)
		}
	case SortPriceLow:
		return func(a, b Product) int {
			return a.Price.Cmp(b.Price)
		}
	case SortPriceHigh:
		return func(a, b Product) int {
			return b.Price.Cmp(a.Price)
		}
	case SortRating:
		return func(a, b Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		}
	default:
		return nil
	}
}
