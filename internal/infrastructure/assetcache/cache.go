// Package assetcache pre-caches the storefront's static assets and serves
// them cache-first, falling back to the origin on a miss.
package assetcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrAssetNotFound is returned when neither the cache nor the origin has a path
var ErrAssetNotFound = errors.New("asset not found")

// DefaultManifest lists the assets cached on install
var DefaultManifest = []string{
	"/",
	"/styles.css",
	"/script.js",
	"/privacy-policy.html",
	"/terms-of-service.html",
	"/cookie-policy.html",
}

// Asset is a cached static response
type Asset struct {
	Path        string
	ContentType string
	Body        []byte
}

// Source tells where Fetch got an asset from
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Fetcher loads assets from the origin
type Fetcher interface {
	Fetch(ctx context.Context, path string) (Asset, error)
}

// Cache is a named, install-once asset cache
type Cache struct {
	name     string
	manifest []string
	origin   Fetcher
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string]Asset
}

// New creates an empty cache
func New(name string, manifest []string, origin Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		name:     name,
		manifest: slices.Clone(manifest),
		origin:   origin,
		logger:   logger.Named("assetcache"),
		entries:  make(map[string]Asset),
	}
}

// Name returns the cache name
func (c *Cache) Name() string {
	return c.name
}

// Install fetches every manifest entry. Either all entries are cached or,
// when any fetch fails, none are.
func (c *Cache) Install(ctx context.Context) error {
	fetched := make(map[string]Asset, len(c.manifest))
	for _, p := range c.manifest {
		asset, err := c.origin.Fetch(ctx, p)
		if err != nil {
			return fmt.Errorf("install %s: %s: %w", c.name, p, err)
		}
		fetched[p] = asset
	}

	c.mu.Lock()
	for p, asset := range fetched {
		c.entries[p] = asset
	}
	c.mu.Unlock()

	c.logger.Info("asset cache installed", zap.String("cache", c.name), zap.Int("assets", len(fetched)))
	return nil
}

// Fetch serves path from the cache, or from the origin on a miss.
// Origin responses are not added to the cache.
func (c *Cache) Fetch(ctx context.Context, p string) (Asset, Source, error) {
	c.mu.RLock()
	asset, ok := c.entries[p]
	c.mu.RUnlock()
	if ok {
		return asset, SourceCache, nil
	}

	asset, err := c.origin.Fetch(ctx, p)
	if err != nil {
		return Asset{}, SourceNetwork, err
	}
	return asset, SourceNetwork, nil
}

// FSFetcher serves assets from a file system. "/" maps to index.html.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher over fsys
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch implements Fetcher
func (f *FSFetcher) Fetch(ctx context.Context, p string) (Asset, error) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		name = "index.html"
	}

	body, err := fs.ReadFile(f.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, p)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("read asset %s: %w", p, err)
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Asset{Path: p, ContentType: contentType, Body: body}, nil
}
