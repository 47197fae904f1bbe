package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/assetcache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentHandler(t *testing.T) {
	newEngine := func(country string) *gin.Engine {
		store := persistence.NewConsentRepository(storage.NewInMemoryStore())
		h := NewConsentHandler(storefront.NewConsentService(store, country, []string{"DE", "GB", "FR", "IT", "ES"}))
		r := gin.New()
		r.GET("/consent", h.GetStatus)
		r.POST("/consent/accept", h.Accept)
		return r
	}

	t.Run("outside jurisdiction", func(t *testing.T) {
		w := doRequest(newEngine("US"), http.MethodGet, "/consent", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[storefront.ConsentStatus](t, w)
		assert.Equal(t, "US", resp.Data.Country)
		assert.False(t, resp.Data.NeedsConsent)
	})

	t.Run("accept inside jurisdiction", func(t *testing.T) {
		r := newEngine("DE")

		resp := decode[storefront.ConsentStatus](t, doRequest(r, http.MethodGet, "/consent", nil))
		assert.True(t, resp.Data.NeedsConsent)

		w := doRequest(r, http.MethodPost, "/consent/accept", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp = decode[storefront.ConsentStatus](t, w)
		assert.True(t, resp.Data.Accepted)
		assert.False(t, resp.Data.NeedsConsent)
	})
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy after load", func(t *testing.T) {
		svc, _ := newTestService(t, defaultSeed())
		require.NoError(t, svc.LoadCatalog(context.Background()))

		r := gin.New()
		r.GET("/health", NewSystemHandler(svc, "memory").Health)
		w := doRequest(r, http.MethodGet, "/health", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Data.Status)
		assert.Equal(t, "memory", resp.Data.Storage)
		assert.Equal(t, 3, resp.Data.Catalog.ProductCount)
	})

	t.Run("unhealthy after a failed load", func(t *testing.T) {
		svc, _ := newTestService(t, catalog.SeedData{})
		require.Error(t, svc.LoadCatalog(context.Background()))

		r := gin.New()
		r.GET("/health", NewSystemHandler(svc, "memory").Health)
		w := doRequest(r, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", resp.Data.Status)
	})
}

func TestAssetHandler(t *testing.T) {
	origin := assetcache.NewFSFetcher(fstest.MapFS{
		"index.html": {Data: []byte("<html></html>")},
		"styles.css": {Data: []byte("body{}")},
		"extra.js":   {Data: []byte("void 0")},
	})
	cache := assetcache.New("test-v1", []string{"/", "/styles.css"}, origin, nil)
	require.NoError(t, cache.Install(context.Background()))

	r := gin.New()
	r.GET("/assets/*path", NewAssetHandler(cache).Serve)

	t.Run("cache hit", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/assets/styles.css", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cache", w.Header().Get("X-Cache"))
		assert.Equal(t, "body{}", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	})

	t.Run("network fallback", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/assets/extra.js", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "network", w.Header().Get("X-Cache"))
	})

	t.Run("missing", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/assets/nope.png", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEventStreamHandler(t *testing.T) {
	h := NewEventStreamHandler(WithSSEHeartbeat(time.Hour), WithSSEClientBuffer(4))
	require.NoError(t, h.Start())
	assert.Error(t, h.Start())
	defer h.Stop()

	r := gin.New()
	r.GET("/events", h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if name, ok := strings.CutPrefix(strings.TrimSpace(line), "event: "); ok {
				return name
			}
		}
	}

	assert.Equal(t, "connected", readEvent())
	assert.Equal(t, 1, h.ClientCount())

	require.NoError(t, h.Handle(context.Background(), catalog.NewCatalogLoadedEvent(12)))
	assert.Equal(t, catalog.EventTypeCatalogLoaded, readEvent())
	assert.Nil(t, h.EventTypes())
}

func TestEventStreamHandler_DropsWhenFull(t *testing.T) {
	h := NewEventStreamHandler(WithSSEClientBuffer(1))
	client := &SSEClient{ID: "slow", Chan: make(chan SSEMessage, 1), Done: make(chan struct{})}
	h.clients.Store(client.ID, client)

	require.NoError(t, h.Handle(context.Background(), catalog.NewCatalogLoadedEvent(1)))
	require.NoError(t, h.Handle(context.Background(), catalog.NewCatalogLoadedEvent(2)))

	assert.Len(t, client.Chan, 1)
	msg := <-client.Chan
	assert.Contains(t, msg.Data, `"product_count":1`)
}

func TestEventStreamHandler_MaxClients(t *testing.T) {
	h := NewEventStreamHandler(WithSSEMaxClients(1))
	h.clients.Store("busy", &SSEClient{ID: "busy"})

	r := gin.New()
	r.GET("/events", h.Stream)
	w := doRequest(r, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
