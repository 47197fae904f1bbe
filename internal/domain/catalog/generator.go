package catalog

import (
	"math"

	"github.com/shopspring/decimal"
)

// RandomSource yields pseudo-random floats in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// GenerateOptions controls optional parts of catalog generation
type GenerateOptions struct {
	// PriceComparison sets an original price on every product
	PriceComparison bool
}

// Generate builds the sample catalog from seed templates.
//
// Product i gets ID i+1 and category categories[i%len(categories)]. The base
// price is a whole number in [20, 220), the rating lies in [3.0, 5.0] with one
// decimal, reviews fall in [10, 510) and roughly nine in ten products are in stock.
func Generate(seed SeedData, opts GenerateOptions, rng RandomSource) ([]Product, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(seed.Products))
	for i, name := range seed.Products {
		category := seed.Categories[i%len(seed.Categories)]
		basePrice := int64(math.Floor(rng.Float64()*200)) + 20
		rating := math.Round((rng.Float64()*2+3)*10) / 10

		product, err := NewProduct(i+1, name, category, decimal.NewFromInt(basePrice))
		if err != nil {
			return nil, err
		}
		product.Rating = rating

		if opts.PriceComparison {
			original := decimal.NewFromInt(basePrice + int64(math.Floor(rng.Float64()*50)))
			product.OriginalPrice = &original
		}

		product.Reviews = int(math.Floor(rng.Float64()*500)) + 10
		product.InStock = rng.Float64() > 0.1

		products = append(products, product)
	}

	return products, nil
}
