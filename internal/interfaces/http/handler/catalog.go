package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles catalog browsing endpoints
type CatalogHandler struct {
	BaseHandler
	svc *storefront.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(svc *storefront.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GetStatus returns the catalog loading state
// @Router /catalog/status [get]
func (h *CatalogHandler) GetStatus(c *gin.Context) {
	h.Success(c, h.svc.Status())
}

// GetView returns the current filtered and sorted view
// @Router /catalog/view [get]
func (h *CatalogHandler) GetView(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	h.Success(c, h.svc.View())
}

// ListCategories returns the catalog's categories
// @Router /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	h.Success(c, h.svc.Categories())
}

// GetProduct returns one product of the full catalog
// @Router /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	var req dto.ProductIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.svc.Product(req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Search replaces the view with the products matching a query
// @Router /catalog/search [post]
func (h *CatalogHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if !h.ready(c) {
		return
	}
	h.Success(c, h.svc.Search(c.Request.Context(), req.Query))
}

// ApplyFilters replaces the view with the products matching category and price filters
// @Router /catalog/filters [post]
func (h *CatalogHandler) ApplyFilters(c *gin.Context) {
	var req dto.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.MaxPrice.IsNegative() {
		h.HandleError(c, shared.NewDomainError("INVALID_INPUT", "max_price must not be negative"))
		return
	}
	if !h.ready(c) {
		return
	}
	h.Success(c, h.svc.ApplyFilters(c.Request.Context(), req.Categories, *req.MaxPrice))
}

// ApplySorting re-orders the current view
// @Router /catalog/sort [post]
func (h *CatalogHandler) ApplySorting(c *gin.Context) {
	var req dto.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if !h.ready(c) {
		return
	}
	h.Success(c, h.svc.ApplySorting(c.Request.Context(), catalog.SortKey(req.Key)))
}

// ready writes a 503 and returns false when the catalog failed to load
func (h *CatalogHandler) ready(c *gin.Context) bool {
	if h.svc.Status().Status == storefront.StatusFailed {
		h.HandleError(c, shared.ErrLoadFailure)
		return false
	}
	return true
}
