package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	svc       *storefront.Service
	storage   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. storage names the active KV backend.
func NewSystemHandler(svc *storefront.Service, storage string) *SystemHandler {
	return &SystemHandler{
		svc:       svc,
		storage:   storage,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                   `json:"status"`
	Catalog   storefront.CatalogStatus `json:"catalog"`
	Storage   string                   `json:"storage"`
	GoVersion string                   `json:"go_version"`
	Uptime    string                   `json:"uptime"`
	Time      string                   `json:"time"`
}

// Health reports liveness. A failed catalog load makes the service unhealthy.
// @Router /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	catalogStatus := h.svc.Status()
	resp := HealthResponse{
		Status:    "healthy",
		Catalog:   catalogStatus,
		Storage:   h.storage,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Time:      time.Now().Format(time.RFC3339),
	}

	status := http.StatusOK
	if catalogStatus.Status == storefront.StatusFailed {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
