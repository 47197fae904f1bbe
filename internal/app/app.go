// Package app assembles the storefront from configuration. The server and
// the CLI share it so both see the same catalog, cart and consent state.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/metrics"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// App holds the wired storefront components
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         shared.KeyValueStore
	StorageDriver string
	EventBus      *event.InMemoryEventBus
	Metrics       *metrics.Registry
	Storefront    *storefront.Service
	Consent       *storefront.ConsentService
}

type options struct {
	store     shared.KeyValueStore
	random    catalog.RandomSource
	loadDelay *time.Duration
	pinSeed   bool
}

// Option customizes New
type Option func(*options)

// WithStore uses store instead of opening the configured backend
func WithStore(store shared.KeyValueStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRandom overrides the catalog's random source
func WithRandom(random catalog.RandomSource) Option {
	return func(o *options) {
		o.random = random
	}
}

// WithPinnedSeed reuses the catalog seed stored with the cart, storing the
// configured one on first use. An explicitly configured seed always wins.
// Short-lived processes use it so each run sees the same catalog.
func WithPinnedSeed() Option {
	return func(o *options) {
		o.pinSeed = true
	}
}

// WithLoadDelay overrides the configured catalog load delay
func WithLoadDelay(d time.Duration) Option {
	return func(o *options) {
		o.loadDelay = &d
	}
}

// New opens storage, restores the cart and wires the event bus.
// The catalog is not loaded; call Storefront.LoadCatalog.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	seed, err := LoadSeed(cfg.Catalog.TemplatesFile)
	if err != nil {
		return nil, err
	}

	store, driver := o.store, "custom"
	if store == nil {
		store, err = storage.NewFactory(cfg, storage.WithLogger(log)).CreateStore()
		if err != nil {
			return nil, err
		}
		driver = cfg.Storage.Driver
		if _, ok := store.(*storage.InMemoryStore); ok && driver != "memory" {
			driver = "memory"
		}
	}

	randomSeed := cfg.Catalog.Seed
	if o.pinSeed && !cfg.Catalog.SeedFixed {
		randomSeed, err = persistence.NewSeedRepository(store).Pin(ctx, randomSeed)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	loadDelay := cfg.Catalog.LoadDelay
	if o.loadDelay != nil {
		loadDelay = *o.loadDelay
	}

	bus := event.NewInMemoryEventBus(log.Named("events"))
	registry := metrics.NewRegistry()
	bus.Subscribe(registry)

	svc := storefront.NewService(persistence.NewCartRepository(store, log), storefront.Options{
		Seed:            seed,
		Generate:        catalog.GenerateOptions{PriceComparison: cfg.Catalog.PriceComparison},
		RandomSeed:      randomSeed,
		Random:          o.random,
		LoadDelay:       loadDelay,
		DefaultMaxPrice: decimal.NewFromFloat(cfg.Catalog.DefaultMaxPrice),
	}, log.Named("storefront"))
	svc.SetEventPublisher(bus)

	if err := svc.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to restore cart: %w", err)
	}

	consent := storefront.NewConsentService(
		persistence.NewConsentRepository(store),
		cfg.Compliance.Country,
		cfg.Compliance.Jurisdictions,
	)

	return &App{
		Config:        cfg,
		Logger:        log,
		Store:         store,
		StorageDriver: driver,
		EventBus:      bus,
		Metrics:       registry,
		Storefront:    svc,
		Consent:       consent,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

// LoadSeed reads catalog templates from path, or the embedded defaults when path is empty
func LoadSeed(path string) (catalog.SeedData, error) {
	if path == "" {
		return catalog.DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.SeedData{}, fmt.Errorf("failed to read catalog templates: %w", err)
	}
	return catalog.ParseSeed(data)
}
