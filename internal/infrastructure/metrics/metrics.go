package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Registry holds the storefront's Prometheus collectors
type Registry struct {
	reg *prometheus.Registry

	Events              *prometheus.CounterVec
	CartItems           prometheus.Gauge
	CartTotal           prometheus.Gauge
	CatalogProducts     prometheus.Gauge
	CatalogViewSize     prometheus.Gauge
	CatalogLoadFailures prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

// NewRegistry creates a registry with every storefront collector registered
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_domain_events_total",
		Help: "Domain events published, by type.",
	}, []string{"type"})
	cartItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_items",
		Help: "Sum of quantities in the cart.",
	})
	cartTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_total",
		Help: "Cart total price.",
	})
	catalogProducts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_catalog_products",
		Help: "Products in the loaded catalog.",
	})
	viewSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_catalog_view_size",
		Help: "Products in the current catalog view.",
	})
	loadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_load_failures_total",
		Help: "Failed catalog loads.",
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests, by route and status.",
	}, []string{"method", "route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(
		events, cartItems, cartTotal, catalogProducts, viewSize, loadFailures, httpRequests, httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		reg:                 r,
		Events:              events,
		CartItems:           cartItems,
		CartTotal:           cartTotal,
		CatalogProducts:     catalogProducts,
		CatalogViewSize:     viewSize,
		CatalogLoadFailures: loadFailures,
		HTTPRequests:        httpRequests,
		HTTPLatency:         httpLatency,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per route template
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handle implements shared.EventHandler, keeping the gauges in step with the domain
func (r *Registry) Handle(ctx context.Context, event shared.DomainEvent) error {
	r.Events.WithLabelValues(event.EventType()).Inc()

	switch e := event.(type) {
	case *cart.CartChangedEvent:
		r.CartItems.Set(float64(e.Count))
		r.CartTotal.Set(e.Total.InexactFloat64())
	case *catalog.ViewChangedEvent:
		r.CatalogViewSize.Set(float64(e.Count))
	case *catalog.CatalogLoadedEvent:
		r.CatalogProducts.Set(float64(e.ProductCount))
		r.CatalogViewSize.Set(float64(e.ProductCount))
	case *catalog.CatalogLoadFailedEvent:
		r.CatalogLoadFailures.Inc()
	}
	return nil
}

// EventTypes implements shared.EventHandler. The registry counts every event.
func (r *Registry) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*Registry)(nil)
