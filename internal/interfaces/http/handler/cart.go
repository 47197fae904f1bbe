package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	BaseHandler
	svc *storefront.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(svc *storefront.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

// GetCart returns the cart contents, count and total
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	h.Success(c, h.svc.Cart())
}

// AddItem adds one unit of a product
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.svc.AddToCart(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RemoveItem drops a product's line
// @Router /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req dto.CartProductIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	summary, err := h.svc.RemoveFromCart(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
