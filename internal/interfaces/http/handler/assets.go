package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/assetcache"
)

// AssetHandler serves the offline asset cache
type AssetHandler struct {
	BaseHandler
	cache *assetcache.Cache
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(cache *assetcache.Cache) *AssetHandler {
	return &AssetHandler{cache: cache}
}

// Serve answers from the cache first and falls back to the origin.
// X-Cache reports where the body came from.
// @Router /assets/{path} [get]
func (h *AssetHandler) Serve(c *gin.Context) {
	asset, source, err := h.cache.Fetch(c.Request.Context(), c.Param("path"))
	if err != nil {
		if errors.Is(err, assetcache.ErrAssetNotFound) {
			h.NotFound(c, "Asset not found")
			return
		}
		h.HandleError(c, err)
		return
	}

	c.Header("X-Cache", string(source))
	c.Data(http.StatusOK, asset.ContentType, asset.Body)
}
