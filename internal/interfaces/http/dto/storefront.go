package dto

import "github.com/shopspring/decimal"

// SearchRequest is the body of POST /catalog/search
type SearchRequest struct {
	Query string `json:"query" binding:"max=200"`
}

// FilterRequest is the body of POST /catalog/filters
type FilterRequest struct {
	Categories []string         `json:"categories" binding:"omitempty,dive,required"`
	MaxPrice   *decimal.Decimal `json:"max_price" binding:"required"`
}

// SortRequest is the body of POST /catalog/sort
type SortRequest struct {
	Key string `json:"key" binding:"required"`
}

// AddCartItemRequest is the body of POST /cart/items
type AddCartItemRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
}

// ProductIDRequest binds the product id path parameter
type ProductIDRequest struct {
	ID int `uri:"id" binding:"required,min=1"`
}

// CartProductIDRequest binds the cart line path parameter
type CartProductIDRequest struct {
	ProductID int `uri:"product_id" binding:"required,min=1"`
}
