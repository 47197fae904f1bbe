package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/app"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CatalogListOptions holds flags for catalog list.
type CatalogListOptions struct {
	*RootOptions
	Search     string
	Categories []string
	MaxPrice   float64
	Sort       string
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogShowCommand(rootOpts))
	return cmd
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long: `List products, optionally searched or filtered, then sorted.

A search looks at every product and ignores category and price filters, so
--search cannot be combined with --category or --max-price.

Example:
  storefrontctl catalog list --category Books --max-price 100 --sort price-low`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive search over name, category and description")
	cmd.Flags().StringSliceVar(&opts.Categories, "category", nil, "only show these categories (repeatable)")
	cmd.Flags().Float64Var(&opts.MaxPrice, "max-price", 0, "only show products priced at or below this (default from config)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort order (default|name|price-low|price-high|rating)")

	return cmd
}

func runCatalogList(cmd *cobra.Command, opts *CatalogListOptions) error {
	filtering := cmd.Flags().Changed("category") || cmd.Flags().Changed("max-price")
	if opts.Search != "" && filtering {
		return WrapExitError(ExitCommandError, "--search cannot be combined with --category or --max-price", nil)
	}
	if opts.Sort != "" && !slices.Contains(catalog.SortKeys, catalog.SortKey(opts.Sort)) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("unknown sort key %q", opts.Sort), nil)
	}
	if opts.MaxPrice < 0 {
		return WrapExitError(ExitCommandError, "--max-price cannot be negative", nil)
	}

	return withApp(cmd, opts.RootOptions, true, func(a *app.App, out *OutputFormatter) error {
		ctx := cmd.Context()
		svc := a.Storefront

		var view storefront.ViewState
		switch {
		case opts.Search != "":
			view = svc.Search(ctx, opts.Search)
		case filtering:
			maxPrice := decimal.NewFromFloat(a.Config.Catalog.DefaultMaxPrice)
			if cmd.Flags().Changed("max-price") {
				maxPrice = decimal.NewFromFloat(opts.MaxPrice)
			}
			view = svc.ApplyFilters(ctx, opts.Categories, maxPrice)
		default:
			view = svc.View()
		}
		if opts.Sort != "" {
			view = svc.ApplySorting(ctx, catalog.SortKey(opts.Sort))
		}

		return out.Success(view, func(w io.Writer) {
			renderProducts(w, view.Products, view.Message)
		})
	})
}

func newCatalogShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, rootOpts, true, func(a *app.App, out *OutputFormatter) error {
				product, err := a.Storefront.Product(id)
				if errors.Is(err, shared.ErrNotFound) {
					return refuse(out, fmt.Sprintf("product %d not found", id), err)
				}
				if err != nil {
					return err
				}
				return out.Success(product, func(w io.Writer) {
					renderProduct(w, product)
				})
			})
		},
	}
}

func parseProductID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", arg), nil)
	}
	return id, nil
}

// refuse reports a domain refusal on the output and exits with ExitFailure
func refuse(out *OutputFormatter, message string, err error) error {
	code := "ERROR"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	if writeErr := out.Error(code, message); writeErr != nil {
		return writeErr
	}
	return WrapExitError(ExitFailure, message, err)
}
