package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/app"
	"github.com/storefront/backend/internal/domain/shared"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the persisted cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, false, func(a *app.App, out *OutputFormatter) error {
				summary := a.Storefront.Cart()
				return out.Success(summary, func(w io.Writer) {
					renderCart(w, summary)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, true, func(a *app.App, out *OutputFormatter) error {
				summary, err := a.Storefront.AddToCart(cmd.Context(), id)
				if errors.Is(err, shared.ErrProductUnavailable) {
					return refuse(out, shared.ErrProductUnavailable.Message, err)
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to save cart", err)
				}
				return out.Success(summary, func(w io.Writer) {
					renderCart(w, summary)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product's line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, false, func(a *app.App, out *OutputFormatter) error {
				summary, err := a.Storefront.RemoveFromCart(cmd.Context(), id)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to save cart", err)
				}
				return out.Success(summary, func(w io.Writer) {
					renderCart(w, summary)
				})
			})
		},
	})

	return cmd
}
