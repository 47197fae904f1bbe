package storage

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Factory creates key-value stores based on configuration
type Factory struct {
	storageConfig         config.StorageConfig
	redisConfig           config.RedisConfig
	databaseConfig        config.DatabaseConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a new factory. Fallback follows cfg.Storage.Fallback.
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		storageConfig:         cfg.Storage,
		redisConfig:           cfg.Redis,
		databaseConfig:        cfg.Database,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Storage.Fallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore opens the configured backend. When it cannot be opened and
// fallback is allowed, an in-memory store is returned instead.
func (f *Factory) CreateStore() (shared.KeyValueStore, error) {
	driver := f.storageConfig.Driver
	store, err := f.open(driver)
	if err == nil {
		f.logger.Info("using key-value store", zap.String("driver", driver))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("storage driver %s unavailable: %w", driver, err)
	}

	f.logger.Warn("storage unavailable, falling back to in-memory store. Cart and consent will not survive a restart.",
		zap.String("driver", driver),
		zap.Error(err),
	)
	return NewInMemoryStore(), nil
}

func (f *Factory) open(driver string) (shared.KeyValueStore, error) {
	switch driver {
	case "memory":
		return NewInMemoryStore(), nil
	case "pebble":
		return NewPebbleStore(f.storageConfig.Path, f.logger.Named("pebble"))
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:      f.redisConfig.Addr(),
			Password:  f.redisConfig.Password,
			DB:        f.redisConfig.DB,
			KeyPrefix: f.storageConfig.KeyPrefix,
		})
	case "sqlite":
		db, err := OpenSQLite(f.storageConfig.Path, f.gormLogger())
		if err != nil {
			return nil, err
		}
		store := NewGormStore(db)
		store.closer = closeDB(db)
		if err := store.AutoMigrate(); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case "postgres":
		// The schema is owned by cmd/migrate
		db, err := OpenPostgres(&f.databaseConfig, f.gormLogger())
		if err != nil {
			return nil, err
		}
		store := NewGormStore(db)
		store.closer = closeDB(db)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func (f *Factory) gormLogger() *logger.GormLogger {
	return logger.NewGormLogger(f.logger, logger.MapGormLogLevel(f.databaseConfig.LogLevel))
}
