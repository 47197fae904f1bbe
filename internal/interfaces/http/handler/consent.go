package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
)

// ConsentHandler handles the cookie consent endpoints
type ConsentHandler struct {
	BaseHandler
	svc *storefront.ConsentService
}

// NewConsentHandler creates a new ConsentHandler
func NewConsentHandler(svc *storefront.ConsentService) *ConsentHandler {
	return &ConsentHandler{svc: svc}
}

// GetStatus reports whether the consent banner should be shown
// @Router /consent [get]
func (h *ConsentHandler) GetStatus(c *gin.Context) {
	status, err := h.svc.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Accept records consent
// @Router /consent/accept [post]
func (h *ConsentHandler) Accept(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.Accept(ctx); err != nil {
		h.HandleError(c, err)
		return
	}

	status, err := h.svc.Status(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
