package catalog

import "github.com/storefront/backend/internal/domain/shared"

// Event types for the catalog aggregate
const (
	AggregateTypeCatalog = "Catalog"

	EventTypeCatalogLoaded     = "catalog.loaded"
	EventTypeCatalogLoadFailed = "catalog.load_failed"
	EventTypeViewChanged       = "catalog.view_changed"
)

// ViewChangedEvent is published whenever the catalog view is recomputed
type ViewChangedEvent struct {
	shared.BaseDomainEvent
	Reason  string  `json:"reason"`
	SortKey SortKey `json:"sort_key"`
	Count   int     `json:"count"`
}

// NewViewChangedEvent creates a ViewChangedEvent for the current state of c
func NewViewChangedEvent(c *Catalog, reason string) *ViewChangedEvent {
	return &ViewChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeViewChanged, AggregateTypeCatalog),
		Reason:          reason,
		SortKey:         c.SortKey(),
		Count:           len(c.view),
	}
}

// CatalogLoadedEvent is published once the product set has been generated
type CatalogLoadedEvent struct {
	shared.BaseDomainEvent
	ProductCount int `json:"product_count"`
}

// NewCatalogLoadedEvent creates a CatalogLoadedEvent
func NewCatalogLoadedEvent(productCount int) *CatalogLoadedEvent {
	return &CatalogLoadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogLoaded, AggregateTypeCatalog),
		ProductCount:    productCount,
	}
}

// CatalogLoadFailedEvent is published when generation fails
type CatalogLoadFailedEvent struct {
	shared.BaseDomainEvent
	Message string `json:"message"`
}

// NewCatalogLoadFailedEvent creates a CatalogLoadFailedEvent
func NewCatalogLoadFailedEvent(message string) *CatalogLoadFailedEvent {
	return &CatalogLoadFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogLoadFailed, AggregateTypeCatalog),
		Message:         message,
	}
}
