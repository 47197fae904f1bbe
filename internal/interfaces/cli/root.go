// Package cli implements storefrontctl, a command line front end to the
// same catalog, cart and consent state the HTTP server uses.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/app"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Opener builds the storefront for one command invocation.
type Opener func(ctx context.Context, opts *RootOptions) (*app.App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigFile  string
	Storage     string
	StoragePath string

	open Opener
}

// NewRootCommand creates the root command for storefrontctl.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOpener(DefaultOpener)
}

// NewRootCommandWithOpener creates the root command with a custom storefront opener.
func NewRootCommandWithOpener(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Browse the catalog and manage the cart from the terminal",
		Long: `storefrontctl browses the sample catalog and manages the persisted cart
and cookie consent. It reads the same config.toml as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: ./config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "storage driver override (memory|pebble|redis|sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.StoragePath, "storage-path", "", "pebble directory or sqlite file")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewConsentCommand(opts))

	return cmd
}

// DefaultOpener loads configuration and opens the configured store.
// The in-memory driver would forget the cart between invocations, so it is
// replaced with pebble unless requested explicitly with --storage.
func DefaultOpener(ctx context.Context, opts *RootOptions) (*app.App, error) {
	cfg, err := config.LoadFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	driver := opts.Storage
	if driver == "" && cfg.Storage.Driver == "memory" {
		driver = "pebble"
	}
	if driver != "" && driver != cfg.Storage.Driver {
		cfg.Storage.Driver = driver
		cfg.Storage.Path = defaultStoragePath(driver)
	}
	if opts.StoragePath != "" {
		cfg.Storage.Path = opts.StoragePath
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}

	return app.New(ctx, cfg, log, app.WithLoadDelay(0), app.WithPinnedSeed())
}

func defaultStoragePath(driver string) string {
	switch driver {
	case "pebble":
		return "data/storefront"
	case "sqlite":
		return "data/storefront.db"
	default:
		return ""
	}
}

// withApp opens the storefront, optionally loads the catalog, and runs fn
func withApp(cmd *cobra.Command, opts *RootOptions, loadCatalog bool, fn func(a *app.App, out *OutputFormatter) error) error {
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	ctx := cmd.Context()

	a, err := opts.open(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storefront", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing storage: %v\n", err)
		}
	}()

	if loadCatalog {
		if err := a.Storefront.LoadCatalog(ctx); err != nil {
			return WrapExitError(ExitFailure, "failed to load catalog", err)
		}
	}

	return fn(a, &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()})
}
