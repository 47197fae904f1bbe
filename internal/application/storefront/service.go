package storefront

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Options configures the storefront service
type Options struct {
	Seed            catalog.SeedData
	Generate        catalog.GenerateOptions
	RandomSeed      uint64
	Random          catalog.RandomSource // overrides RandomSeed when set
	LoadDelay       time.Duration
	DefaultMaxPrice decimal.Decimal
}

// Service owns the one catalog and the one cart of a running storefront.
//
// Every operation takes the same mutex, so concurrent callers observe the
// operations in a single order. Event handlers run synchronously while the
// mutex is held and must not call back into the Service.
type Service struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	cart     *cart.Cart
	cartRepo cart.CartRepository

	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	opts           Options

	status     Status
	statusMsg  string
	query      string
	categories []string
	maxPrice   decimal.Decimal
}

// NewService creates a storefront service with an empty catalog and cart.
// Call Init to restore the persisted cart and LoadCatalog to populate the catalog.
func NewService(cartRepo cart.CartRepository, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewPCG(opts.RandomSeed, opts.RandomSeed>>1|1))
	}
	return &Service{
		catalog:  catalog.New(nil),
		cart:     cart.New(),
		cartRepo: cartRepo,
		logger:   logger,
		opts:     opts,
		status:   StatusLoading,
		maxPrice: opts.DefaultMaxPrice,
	}
}

// SetEventPublisher sets the publisher for change notifications
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventPublisher = publisher
}

// Init restores the persisted cart and announces its count and total
func (s *Service) Init(ctx context.Context) error {
	c, err := s.cartRepo.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = c
	s.logger.Info("cart restored", zap.Int("count", c.Count()))
	s.publish(ctx, cart.NewCartChangedEvent(c, cart.ChangeRestored, 0))
	return nil
}

// LoadCatalog waits for the configured delay and then generates the catalog.
// It is not cancellable and does not retry. On failure the catalog stays empty
// and the status becomes failed.
func (s *Service) LoadCatalog(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.statusMsg = ""
	s.mu.Unlock()

	// Other operations keep running during the delay
	time.Sleep(s.opts.LoadDelay)

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := catalog.Generate(s.opts.Seed, s.opts.Generate, s.opts.Random)
	if err != nil {
		s.catalog.Reset(nil)
		s.status = StatusFailed
		s.statusMsg = shared.ErrLoadFailure.Message
		s.logger.Error("failed to load catalog", zap.Error(err))
		s.publish(ctx, catalog.NewCatalogLoadFailedEvent(shared.ErrLoadFailure.Message))
		return fmt.Errorf("%w: %v", shared.ErrLoadFailure, err)
	}

	s.catalog.Reset(products)
	s.status = StatusReady
	s.query = ""
	s.logger.Info("catalog loaded", zap.Int("products", len(products)))
	s.publish(ctx, catalog.NewCatalogLoadedEvent(len(products)), catalog.NewViewChangedEvent(s.catalog, "loaded"))
	return nil
}

// Status returns the catalog loading state
func (s *Service) Status() CatalogStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CatalogStatus{Status: s.status, Message: s.statusMsg, ProductCount: s.catalog.Len()}
}

// Search replaces the view with the products matching query.
// Any category or price filter is discarded.
func (s *Service) Search(ctx context.Context, query string) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Search(query)
	s.query = query
	s.categories = nil
	s.maxPrice = s.opts.DefaultMaxPrice
	s.publish(ctx, catalog.NewViewChangedEvent(s.catalog, "search"))
	return s.viewState()
}

// ApplyFilters replaces the view with the products in the selected categories
// priced at or below maxPrice, sorted by the current sort key
func (s *Service) ApplyFilters(ctx context.Context, categories []string, maxPrice decimal.Decimal) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.ApplyFilters(categories, maxPrice)
	s.categories = slices.Clone(categories)
	s.maxPrice = maxPrice
	s.query = ""
	s.publish(ctx, catalog.NewViewChangedEvent(s.catalog, "filters"))
	return s.viewState()
}

// ApplySorting re-orders the current view
func (s *Service) ApplySorting(ctx context.Context, key catalog.SortKey) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.ApplySorting(key)
	s.publish(ctx, catalog.NewViewChangedEvent(s.catalog, "sort"))
	return s.viewState()
}

// View returns the current view state
func (s *Service) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewState()
}

// Product looks a product up in the full catalog
func (s *Service) Product(id int) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Product(id)
	if !ok {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, nil
}

// Categories returns the catalog's categories
func (s *Service) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Categories()
}

// AddToCart adds one unit of a product to the cart and persists the cart.
// Missing and out-of-stock products fail with shared.ErrProductUnavailable.
// When persisting fails the cart is left unchanged.
func (s *Service) AddToCart(ctx context.Context, productID int) (CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.catalog.Product(productID)
	if !ok || !product.InStock {
		return summarize(s.cart), shared.ErrProductUnavailable
	}

	next := s.cart.Clone()
	next.Add(cart.NewItemFromProduct(product))
	if err := s.commit(ctx, next); err != nil {
		return summarize(s.cart), err
	}

	s.logger.Debug("added to cart", zap.Int("product_id", productID), zap.Int("count", s.cart.Count()))
	return summarize(s.cart), nil
}

// RemoveFromCart drops a product's line from the cart. Removing a product
// that is not in the cart is not an error; the cart is persisted either way.
func (s *Service) RemoveFromCart(ctx context.Context, productID int) (CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Clone()
	next.Remove(productID)
	if err := s.commit(ctx, next); err != nil {
		return summarize(s.cart), err
	}
	return summarize(s.cart), nil
}

// Cart returns a snapshot of the cart
func (s *Service) Cart() CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.cart)
}

// CartTotal returns the sum of price times quantity
func (s *Service) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// CartCount returns the sum of quantities
func (s *Service) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}

// commit persists next and, once stored, makes it the current cart and
// publishes its pending events. Must be called with s.mu held.
func (s *Service) commit(ctx context.Context, next *cart.Cart) error {
	if err := s.cartRepo.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist cart", zap.Error(err))
		return err
	}

	events := next.GetDomainEvents()
	next.ClearDomainEvents()
	s.cart = next
	s.publish(ctx, events...)
	return nil
}

// publish must be called with s.mu held
func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish events", zap.Error(err))
	}
}

func (s *Service) viewState() ViewState {
	products := s.catalog.View()
	state := ViewState{
		Query:      s.query,
		Categories: slices.Clone(s.categories),
		MaxPrice:   s.maxPrice,
		SortKey:    s.catalog.SortKey(),
		Products:   products,
	}
	if state.Categories == nil {
		state.Categories = []string{}
	}
	if len(products) == 0 && s.status == StatusReady {
		state.Message = EmptyViewMessage
	}
	return state
}
