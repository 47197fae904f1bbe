package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/storefront/backend/internal/app"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource cycles through values. Every fourth draw decides stock,
// so 0.05 there marks a product out of stock.
type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

type harness struct {
	t     *testing.T
	store *storage.InMemoryStore
	cfg   *config.Config
}

func newHarness(t *testing.T, toml string) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o600))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	return &harness{t: t, store: storage.NewInMemoryStore(), cfg: cfg}
}

// nopCloseStore keeps the shared store open across invocations
type nopCloseStore struct {
	*storage.InMemoryStore
}

func (nopCloseStore) Close() error { return nil }

func (h *harness) opener(ctx context.Context, _ *RootOptions) (*app.App, error) {
	// Product 2 is out of stock; the rest are priced 120
	random := &scriptedSource{values: []float64{
		0.5, 0.5, 0.5, 0.5,
		0.5, 0.5, 0.5, 0.05,
	}}
	return app.New(ctx, h.cfg, nil,
		app.WithStore(nopCloseStore{h.store}),
		app.WithRandom(random),
		app.WithLoadDelay(0),
	)
}

func (h *harness) run(args ...string) (string, error) {
	cmd := NewRootCommandWithOpener(h.opener)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefrontctl", cmd.Use)

	for _, path := range [][]string{
		{"catalog", "list"}, {"catalog", "show"},
		{"cart", "show"}, {"cart", "add"}, {"cart", "remove"},
		{"consent", "status"}, {"consent", "accept"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[1], sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.run("--format", "xml", "cart", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCatalogList(t *testing.T) {
	h := newHarness(t, "")

	t.Run("text", func(t *testing.T) {
		out, err := h.run("catalog", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "Wireless Headphones")
		assert.Contains(t, out, "out of stock")
		assert.Contains(t, out, "$120.00")
	})

	t.Run("json search", func(t *testing.T) {
		out, err := h.run("--format", "json", "catalog", "list", "--search", "yoga")
		require.NoError(t, err)

		var resp struct {
			Status string `json:"status"`
			Data   struct {
				Query    string `json:"query"`
				Products []struct {
					Name string `json:"name"`
				} `json:"products"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		require.Len(t, resp.Data.Products, 1)
		assert.Equal(t, "Yoga Mat", resp.Data.Products[0].Name)
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := h.run("catalog", "list", "--search", "submarine")
		require.NoError(t, err)
		assert.Contains(t, out, "No products found matching your criteria.")
	})

	t.Run("filters", func(t *testing.T) {
		out, err := h.run("--format", "json", "catalog", "list", "--category", "Books", "--max-price", "200", "--sort", "name")
		require.NoError(t, err)
		assert.Contains(t, out, `"category":"Books"`)
		assert.NotContains(t, out, `"category":"Fashion"`)
	})

	t.Run("search with filters is rejected", func(t *testing.T) {
		_, err := h.run("catalog", "list", "--search", "mat", "--category", "Books")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("unknown sort key", func(t *testing.T) {
		_, err := h.run("catalog", "list", "--sort", "popularity")
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestCatalogShow(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run("catalog", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireless Headphones")
	assert.Contains(t, out, "Electronics")

	out, err = h.run("catalog", "show", "99")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")

	_, err = h.run("catalog", "show", "abc")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCartCommands(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run("cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	_, err = h.run("cart", "add", "1")
	require.NoError(t, err)
	out, err = h.run("cart", "add", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 2")
	assert.Contains(t, out, "Total: $240.00")

	out, err = h.run("cart", "add", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Product is not available.")

	out, err = h.run("--format", "json", "cart", "show")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			Count int    `json:"count"`
			Total string `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, "240", resp.Data.Total)

	out, err = h.run("cart", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	_, err = h.run("cart", "remove", "5")
	require.NoError(t, err)
}

func TestConsentCommands(t *testing.T) {
	t.Run("not required", func(t *testing.T) {
		h := newHarness(t, "")
		out, err := h.run("consent", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Country US: cookie consent not required.")
	})

	t.Run("required then accepted", func(t *testing.T) {
		h := newHarness(t, "[compliance]\ncountry = \"FR\"\n")

		out, err := h.run("consent", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "required and not yet given")

		out, err = h.run("consent", "accept")
		require.NoError(t, err)
		assert.Contains(t, out, "cookie consent accepted")

		out, err = h.run("--format", "json", "consent", "status")
		require.NoError(t, err)
		assert.Contains(t, out, `"needs_consent":false`)
	})
}

func TestDefaultOpener(t *testing.T) {
	t.Chdir(t.TempDir())
	opts := &RootOptions{Storage: "sqlite", StoragePath: filepath.Join(t.TempDir(), "kv.db")}

	a, err := DefaultOpener(context.Background(), opts)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "sqlite", a.StorageDriver)

	_, err = DefaultOpener(context.Background(), &RootOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestDefaultOpener_KeepsCatalogAcrossInvocations(t *testing.T) {
	t.Chdir(t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[catalog]\nload_delay = \"0s\"\n"), 0o600))
	dataDir := filepath.Join(t.TempDir(), "kv")

	list := func() string {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", configPath, "--storage", "pebble", "--storage-path", dataDir,
			"--format", "json", "catalog", "list"})
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		return out.String()
	}

	first := list()
	assert.Contains(t, first, `"inStock"`)
	assert.Equal(t, first, list())
}
