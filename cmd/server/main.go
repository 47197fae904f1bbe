package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/app"
	"github.com/storefront/backend/internal/infrastructure/assetcache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// storeUnavailableMessage is served for every request when startup fails
const storeUnavailableMessage = "Failed to load the store. Please refresh the page."

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	var (
		engine *gin.Engine
		events *handler.EventStreamHandler
	)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize the store, serving 503 for every request", zap.Error(err))
		engine = newFallbackEngine(log)
	} else {
		engine, events = newEngine(ctx, a)

		// The catalog loads in the background while the server already answers
		go func() {
			if err := a.Storefront.LoadCatalog(ctx); err != nil {
				log.Error("Catalog load failed", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	shutdown(shutdownCtx, srv, events, a, log)
	log.Info("Server exited gracefully")
}

// shutdown ends event streams, drains in-flight requests and only then
// closes the store. events and a are nil when startup failed.
func shutdown(ctx context.Context, srv *http.Server, events *handler.EventStreamHandler, a *app.App, log *zap.Logger) {
	if events != nil {
		events.Stop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a != nil {
		if err := a.Close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}
}

// newEngine builds the full storefront API around a
func newEngine(ctx context.Context, a *app.App) (*gin.Engine, *handler.EventStreamHandler) {
	cfg, log := a.Config, a.Logger

	engine := gin.New()

	// Middleware order: request id, recovery, request logging, tracing, metrics, CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.HTTP.TracingServerName,
		Enabled:     cfg.HTTP.TracingEnabled,
	}))
	if cfg.HTTP.MetricsEnabled {
		engine.Use(a.Metrics.GinMiddleware())
		engine.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	events := handler.NewEventStreamHandler(
		handler.WithSSELogger(log.Named("sse")),
		handler.WithSSEHeartbeat(cfg.HTTP.SSEHeartbeat),
		handler.WithSSEClientBuffer(cfg.HTTP.SSEClientBuffer),
		handler.WithSSEMaxClients(cfg.HTTP.SSEMaxClients),
	)
	if err := events.Start(); err != nil {
		log.Warn("Failed to start event stream", zap.Error(err))
	}
	a.EventBus.Subscribe(events)

	handlers := router.Handlers{
		Catalog: handler.NewCatalogHandler(a.Storefront),
		Cart:    handler.NewCartHandler(a.Storefront),
		Consent: handler.NewConsentHandler(a.Consent),
		Events:  events,
		System:  handler.NewSystemHandler(a.Storefront, a.StorageDriver),
	}
	handlers.RegisterAll(router.NewRouter(engine, router.WithAPIVersion("v1"))).Setup()

	if cfg.Assets.Dir != "" {
		cache := assetcache.New(cfg.Assets.CacheName, cfg.Assets.Manifest,
			assetcache.NewFSFetcher(os.DirFS(cfg.Assets.Dir)), log.Named("assets"))
		installCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := cache.Install(installCtx); err != nil {
			log.Warn("Asset cache install failed, serving from disk only", zap.Error(err))
		}
		cancel()
		engine.GET("/assets/*path", handler.NewAssetHandler(cache).Serve)
	}

	return engine, events
}

// newFallbackEngine answers every request with 503
func newFallbackEngine(log *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	unavailable := middleware.StoreUnavailable(storeUnavailableMessage)
	engine.NoRoute(unavailable)
	engine.NoMethod(unavailable)
	return engine
}
