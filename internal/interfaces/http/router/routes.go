package router

import (
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers bundles the storefront API handlers
type Handlers struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Consent *handler.ConsentHandler
	Events  *handler.EventStreamHandler
	System  *handler.SystemHandler
}

// DomainGroups returns the storefront's route groups
func (h Handlers) DomainGroups() []*DomainGroup {
	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/status", h.Catalog.GetStatus).
		GET("/view", h.Catalog.GetView).
		GET("/categories", h.Catalog.ListCategories).
		GET("/products/:id", h.Catalog.GetProduct).
		POST("/search", h.Catalog.Search).
		POST("/filters", h.Catalog.ApplyFilters).
		POST("/sort", h.Catalog.ApplySorting)

	cartRoutes := NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", h.Cart.GetCart).
		POST("/items", h.Cart.AddItem).
		DELETE("/items/:product_id", h.Cart.RemoveItem)

	consentRoutes := NewDomainGroup("consent", "/consent")
	consentRoutes.GET("", h.Consent.GetStatus).
		POST("/accept", h.Consent.Accept)

	eventRoutes := NewDomainGroup("events", "/events")
	eventRoutes.GET("", h.Events.Stream)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/health", h.System.Health)

	return []*DomainGroup{catalogRoutes, cartRoutes, consentRoutes, eventRoutes, systemRoutes}
}

// RegisterAll registers every storefront group on r
func (h Handlers) RegisterAll(r *Router) *Router {
	for _, group := range h.DomainGroups() {
		r.Register(group)
	}
	return r
}
