package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Catalog    CatalogConfig
	Compliance ComplianceConfig
	Assets     AssetsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration // zero keeps SSE streams open
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	CORSAllowOrigins  []string
	SSEHeartbeat      time.Duration
	SSEClientBuffer   int
	SSEMaxClients     int
	TracingEnabled    bool
	MetricsEnabled    bool
	TracingServerName string
}

// StorageConfig selects the durable key-value backend
type StorageConfig struct {
	Driver    string // memory, pebble, redis, sqlite, postgres
	Path      string // pebble directory or sqlite file
	KeyPrefix string
	// Fallback switches to in-memory storage when the driver cannot be opened
	Fallback bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

// CatalogConfig controls sample catalog generation
type CatalogConfig struct {
	Seed            uint64
	SeedFixed       bool // catalog.seed was configured explicitly
	LoadDelay       time.Duration
	PriceComparison bool
	DefaultMaxPrice float64
	TemplatesFile   string
}

// ComplianceConfig holds the cookie consent settings
type ComplianceConfig struct {
	Country       string
	Jurisdictions []string
}

// AssetsConfig holds offline asset cache settings
type AssetsConfig struct {
	Dir       string
	CacheName string
	Manifest  []string
}

// Load reads config.toml from the usual locations plus STOREFRONT_ environment overrides.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_STORAGE_DRIVER)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches
// the working directory and /etc/storefront.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/storefront")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			SSEHeartbeat:      v.GetDuration("http.sse_heartbeat"),
			SSEClientBuffer:   v.GetInt("http.sse_client_buffer"),
			SSEMaxClients:     v.GetInt("http.sse_max_clients"),
			TracingEnabled:    v.GetBool("http.tracing_enabled"),
			MetricsEnabled:    v.GetBool("http.metrics_enabled"),
			TracingServerName: v.GetString("http.tracing_server_name"),
		},
		Storage: StorageConfig{
			Driver:    v.GetString("storage.driver"),
			Path:      v.GetString("storage.path"),
			KeyPrefix: v.GetString("storage.key_prefix"),
			Fallback:  v.GetBool("storage.fallback"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("database.host"),
			Port:         v.GetInt("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			DBName:       v.GetString("database.dbname"),
			SSLMode:      v.GetString("database.sslmode"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			LogLevel:     v.GetString("database.log_level"),
		},
		Catalog: CatalogConfig{
			Seed:            v.GetUint64("catalog.seed"),
			SeedFixed:       v.IsSet("catalog.seed"),
			LoadDelay:       v.GetDuration("catalog.load_delay"),
			PriceComparison: v.GetBool("catalog.price_comparison"),
			DefaultMaxPrice: v.GetFloat64("catalog.default_max_price"),
			TemplatesFile:   v.GetString("catalog.templates_file"),
		},
		Compliance: ComplianceConfig{
			Country:       v.GetString("compliance.country"),
			Jurisdictions: v.GetStringSlice("compliance.jurisdictions"),
		},
		Assets: AssetsConfig{
			Dir:       v.GetString("assets.dir"),
			CacheName: v.GetString("assets.cache_name"),
			Manifest:  v.GetStringSlice("assets.manifest"),
		},
	}

	// "storage.fallback" defaults to true, so only an explicit setting turns it off
	if !v.IsSet("storage.fallback") {
		cfg.Storage.Fallback = true
	}
	if !v.IsSet("http.metrics_enabled") {
		cfg.HTTP.MetricsEnabled = true
	}
	// A zero delay is a valid explicit choice
	if !v.IsSet("catalog.load_delay") {
		cfg.Catalog.LoadDelay = time.Second
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if cfg.HTTP.SSEHeartbeat == 0 {
		cfg.HTTP.SSEHeartbeat = 30 * time.Second
	}
	if cfg.HTTP.SSEClientBuffer == 0 {
		cfg.HTTP.SSEClientBuffer = 16
	}
	if cfg.HTTP.SSEMaxClients == 0 {
		cfg.HTTP.SSEMaxClients = 1000
	}
	if cfg.HTTP.TracingServerName == "" {
		cfg.HTTP.TracingServerName = cfg.App.Name
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case "pebble":
			cfg.Storage.Path = "data/storefront"
		case "sqlite":
			cfg.Storage.Path = "data/storefront.db"
		}
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Catalog.Seed == 0 {
		cfg.Catalog.Seed = uint64(time.Now().UnixNano())
	}
	if cfg.Catalog.DefaultMaxPrice == 0 {
		cfg.Catalog.DefaultMaxPrice = 500
	}

	if cfg.Compliance.Country == "" {
		cfg.Compliance.Country = "US"
	}
	if len(cfg.Compliance.Jurisdictions) == 0 {
		cfg.Compliance.Jurisdictions = []string{"DE", "GB", "FR", "IT", "ES"}
	}

	if cfg.Assets.CacheName == "" {
		cfg.Assets.CacheName = "ai-product-discovery-hub-v1"
	}
	if len(cfg.Assets.Manifest) == 0 {
		cfg.Assets.Manifest = []string{
			"/",
			"/styles.css",
			"/script.js",
			"/privacy-policy.html",
			"/terms-of-service.html",
			"/cookie-policy.html",
		}
	}
}

// StorageDrivers lists the supported storage backends
var StorageDrivers = []string{"memory", "pebble", "redis", "sqlite", "postgres"}

func (c *Config) validate() error {
	if !slices.Contains(StorageDrivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver must be one of %s, got %q", strings.Join(StorageDrivers, ", "), c.Storage.Driver)
	}
	if c.Catalog.LoadDelay < 0 {
		return fmt.Errorf("catalog.load_delay cannot be negative")
	}
	if c.Catalog.DefaultMaxPrice < 0 {
		return fmt.Errorf("catalog.default_max_price cannot be negative")
	}
	if len(c.Compliance.Country) != 2 {
		return fmt.Errorf("compliance.country must be a two-letter code, got %q", c.Compliance.Country)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.HTTP.SSEClientBuffer < 0 {
		return fmt.Errorf("http.sse_client_buffer cannot be negative")
	}
	if c.HTTP.SSEMaxClients < 0 {
		return fmt.Errorf("http.sse_max_clients cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Storage.Driver == "memory" {
			return fmt.Errorf("storage.driver cannot be 'memory' in production")
		}
		if c.Storage.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
