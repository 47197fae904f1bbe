package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/app"
)

// NewConsentCommand creates the consent command group.
func NewConsentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Inspect or give cookie consent",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether cookie consent is needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, false, func(a *app.App, out *OutputFormatter) error {
				status, err := a.Consent.Status(cmd.Context())
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read consent", err)
				}
				return out.Success(status, func(w io.Writer) {
					renderConsent(w, status)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accept",
		Short: "Record cookie consent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, false, func(a *app.App, out *OutputFormatter) error {
				ctx := cmd.Context()
				if err := a.Consent.Accept(ctx); err != nil {
					return WrapExitError(ExitCommandError, "failed to save consent", err)
				}
				status, err := a.Consent.Status(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read consent", err)
				}
				return out.Success(status, func(w io.Writer) {
					renderConsent(w, status)
				})
			})
		},
	})

	return cmd
}
