package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// newTestService returns a service with three products:
// 1 Lamp (Home, 120), 2 Novel (Books, 40), 3 Kite (Home, 200, out of stock)
func newTestService(t *testing.T, seed catalog.SeedData) (*storefront.Service, *storage.InMemoryStore) {
	t.Helper()
	store := storage.NewInMemoryStore()
	svc := storefront.NewService(persistence.NewCartRepository(store, nil), storefront.Options{
		Seed: seed,
		Random: &scriptedSource{values: []float64{
			0.5, 0.5, 0.5, 0.5,
			0.1, 0.9, 0.5, 0.5,
			0.9, 0.0, 0.5, 0.05,
		}},
		DefaultMaxPrice: decimal.NewFromInt(500),
	}, nil)
	require.NoError(t, svc.Init(context.Background()))
	return svc, store
}

func defaultSeed() catalog.SeedData {
	return catalog.SeedData{
		Categories: []string{"Home", "Books"},
		Products:   []string{"Lamp", "Novel", "Kite"},
	}
}

func newTestEngine(svc *storefront.Service) *gin.Engine {
	catalogHandler := NewCatalogHandler(svc)
	cartHandler := NewCartHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/catalog/status", catalogHandler.GetStatus)
	api.GET("/catalog/view", catalogHandler.GetView)
	api.GET("/catalog/categories", catalogHandler.ListCategories)
	api.GET("/catalog/products/:id", catalogHandler.GetProduct)
	api.POST("/catalog/search", catalogHandler.Search)
	api.POST("/catalog/filters", catalogHandler.ApplyFilters)
	api.POST("/catalog/sort", catalogHandler.ApplySorting)
	api.GET("/cart", cartHandler.GetCart)
	api.POST("/cart/items", cartHandler.AddItem)
	api.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCatalogHandler(t *testing.T) {
	svc, _ := newTestService(t, defaultSeed())
	require.NoError(t, svc.LoadCatalog(context.Background()))
	r := newTestEngine(svc)

	t.Run("status", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.CatalogStatus](t, w)
		assert.Equal(t, storefront.StatusReady, resp.Data.Status)
		assert.Equal(t, 3, resp.Data.ProductCount)
	})

	t.Run("categories", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/categories", nil)
		resp := decode[[]string](t, w)
		assert.Equal(t, []string{"Home", "Books"}, resp.Data)
	})

	t.Run("product", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/products/2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[catalog.Product](t, w)
		assert.Equal(t, "Novel", resp.Data.Name)
		assert.True(t, resp.Data.Price.Equal(decimal.NewFromInt(40)))
	})

	t.Run("unknown product", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/products/99", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[any](t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("invalid product id", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/products/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/catalog/search", dto.SearchRequest{Query: "lamp"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.ViewState](t, w)
		require.Len(t, resp.Data.Products, 1)
		assert.Equal(t, 1, resp.Data.Products[0].ID)
	})

	t.Run("search without matches", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/catalog/search", dto.SearchRequest{Query: "zeppelin"})
		resp := decode[storefront.ViewState](t, w)
		assert.Empty(t, resp.Data.Products)
		assert.Equal(t, storefront.EmptyViewMessage, resp.Data.Message)
	})

	t.Run("sort then filter", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/catalog/sort", dto.SortRequest{Key: "price-low"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(r, http.MethodPost, "/api/v1/catalog/filters", map[string]any{
			"categories": []string{},
			"max_price":  150,
		})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.ViewState](t, w)
		require.Len(t, resp.Data.Products, 2)
		assert.Equal(t, 2, resp.Data.Products[0].ID)
		assert.Equal(t, 1, resp.Data.Products[1].ID)
		assert.Equal(t, catalog.SortPriceLow, resp.Data.SortKey)
	})

	t.Run("filters require max_price", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/catalog/filters", map[string]any{"categories": []string{"Home"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative max_price", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/catalog/filters", map[string]any{"max_price": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[any](t, w)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("view", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/catalog/view", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.ViewState](t, w)
		assert.Len(t, resp.Data.Products, 2)
	})
}

func TestCatalogHandler_LoadFailure(t *testing.T) {
	svc, _ := newTestService(t, catalog.SeedData{})
	require.Error(t, svc.LoadCatalog(context.Background()))
	r := newTestEngine(svc)

	w := doRequest(r, http.MethodGet, "/api/v1/catalog/view", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[any](t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeLoadFailure, resp.Error.Code)
	assert.Equal(t, "Failed to load products. Please try again.", resp.Error.Message)

	w = doRequest(r, http.MethodGet, "/api/v1/catalog/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	status := decode[storefront.CatalogStatus](t, w)
	assert.Equal(t, storefront.StatusFailed, status.Data.Status)
}

func TestCartHandler(t *testing.T) {
	svc, store := newTestService(t, defaultSeed())
	require.NoError(t, svc.LoadCatalog(context.Background()))
	r := newTestEngine(svc)

	t.Run("empty cart", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.CartSummary](t, w)
		assert.Equal(t, 0, resp.Data.Count)
		assert.True(t, resp.Data.Total.IsZero())
	})

	t.Run("add items", func(t *testing.T) {
		for range 2 {
			w := doRequest(r, http.MethodPost, "/api/v1/cart/items", dto.AddCartItemRequest{ProductID: 1})
			require.Equal(t, http.StatusOK, w.Code)
		}
		w := doRequest(r, http.MethodPost, "/api/v1/cart/items", dto.AddCartItemRequest{ProductID: 2})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[storefront.CartSummary](t, w)
		assert.Equal(t, 3, resp.Data.Count)
		assert.Equal(t, "280", resp.Data.Total.String())

		raw, err := store.Get(context.Background(), persistence.CartKey)
		require.NoError(t, err)
		var items []cart.CartItem
		require.NoError(t, json.Unmarshal(raw, &items))
		assert.Len(t, items, 2)
	})

	t.Run("out of stock", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/cart/items", dto.AddCartItemRequest{ProductID: 3})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode[any](t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeProductUnavailable, resp.Error.Code)
		assert.Equal(t, "Product is not available.", resp.Error.Message)
	})

	t.Run("missing product id", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/cart/items", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remove", func(t *testing.T) {
		w := doRequest(r, http.MethodDelete, "/api/v1/cart/items/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.CartSummary](t, w)
		assert.Equal(t, 1, resp.Data.Count)
		assert.Equal(t, "40", resp.Data.Total.String())
	})

	t.Run("remove missing line", func(t *testing.T) {
		w := doRequest(r, http.MethodDelete, "/api/v1/cart/items/77", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.CartSummary](t, w)
		assert.Equal(t, 1, resp.Data.Count)
	})
}
