package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when nothing is set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.True(t, cfg.Storage.Fallback)
		assert.Equal(t, time.Second, cfg.Catalog.LoadDelay)
		assert.False(t, cfg.Catalog.PriceComparison)
		assert.Equal(t, 500.0, cfg.Catalog.DefaultMaxPrice)
		assert.NotZero(t, cfg.Catalog.Seed)
		assert.False(t, cfg.Catalog.SeedFixed)
		assert.Equal(t, "US", cfg.Compliance.Country)
		assert.Equal(t, []string{"DE", "GB", "FR", "IT", "ES"}, cfg.Compliance.Jurisdictions)
		assert.Equal(t, "ai-product-discovery-hub-v1", cfg.Assets.CacheName)
		assert.Len(t, cfg.Assets.Manifest, 6)
		assert.Equal(t, 30*time.Second, cfg.HTTP.SSEHeartbeat)
		assert.True(t, cfg.HTTP.MetricsEnabled)
		assert.Equal(t, 1000, cfg.HTTP.SSEMaxClients)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("reads the config file", func(t *testing.T) {
		path := writeConfig(t, `
[app]
port = "9090"

[storage]
driver = "pebble"
fallback = false

[catalog]
seed = 42
load_delay = "0s"
price_comparison = true

[compliance]
country = "DE"
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "pebble", cfg.Storage.Driver)
		assert.Equal(t, "data/storefront", cfg.Storage.Path)
		assert.False(t, cfg.Storage.Fallback)
		assert.Equal(t, uint64(42), cfg.Catalog.Seed)
		assert.True(t, cfg.Catalog.SeedFixed)
		assert.Equal(t, time.Duration(0), cfg.Catalog.LoadDelay)
		assert.True(t, cfg.Catalog.PriceComparison)
		assert.Equal(t, "DE", cfg.Compliance.Country)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "[storage]\ndriver = \"pebble\"\n")
		t.Setenv("STOREFRONT_STORAGE_DRIVER", "sqlite")
		t.Setenv("STOREFRONT_APP_PORT", "7070")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Storage.Driver)
		assert.Equal(t, "data/storefront.db", cfg.Storage.Path)
		assert.Equal(t, "7070", cfg.App.Port)
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		path := writeConfig(t, "[storage]\ndriver = \"mongo\"\n")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver")
	})

	t.Run("rejects memory storage in production", func(t *testing.T) {
		path := writeConfig(t, "[app]\nenv = \"production\"\n")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "production")
	})

	t.Run("rejects a negative SSE client limit", func(t *testing.T) {
		path := writeConfig(t, "[http]\nsse_max_clients = -1\n")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http.sse_max_clients")
	})

	t.Run("rejects a malformed country", func(t *testing.T) {
		path := writeConfig(t, "[compliance]\ncountry = \"USA\"\n")
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss word",
		DBName:   "storefront",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/storefront?sslmode=disable", d.DSN())
}
