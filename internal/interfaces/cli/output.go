package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation was refused, e.g. an unavailable product
	ExitCommandError = 2 // bad flags, unreadable config or storage
)

// ExitError carries an exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope written with --format json.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data. Text output is produced by render.
func (f *OutputFormatter) Success(data any, render func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	render(f.Writer)
	return nil
}

// Error writes a refusal in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

func renderProducts(w io.Writer, products []catalog.Product, message string) {
	if len(products) == 0 {
		fmt.Fprintln(w, message)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tREVIEWS\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %.1f\t%d\t%s\n",
			p.ID, p.Name, p.Category, formatPrice(p), p.Stars(), p.Rating, p.Reviews, stockLabel(p.InStock))
	}
	_ = tw.Flush()
}

func renderProduct(w io.Writer, p catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(p))
	fmt.Fprintf(tw, "Rating:\t%s %.1f (%d reviews)\n", p.Stars(), p.Rating, p.Reviews)
	fmt.Fprintf(tw, "Stock:\t%s\n", stockLabel(p.InStock))
	fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	_ = tw.Flush()
}

func renderCart(w io.Writer, summary storefront.CartSummary) {
	if len(summary.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range summary.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\t$%s\n",
			item.ProductID, item.Name, item.Quantity, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nItems: %d\nTotal: $%s\n", summary.Count, summary.Total.StringFixed(2))
}

func renderConsent(w io.Writer, status storefront.ConsentStatus) {
	switch {
	case !status.InJurisdiction:
		fmt.Fprintf(w, "Country %s: cookie consent not required.\n", status.Country)
	case status.Accepted:
		fmt.Fprintf(w, "Country %s: cookie consent accepted.\n", status.Country)
	default:
		fmt.Fprintf(w, "Country %s: cookie consent required and not yet given.\n", status.Country)
	}
}

func formatPrice(p catalog.Product) string {
	price := "$" + p.Price.StringFixed(2)
	if savings, ok := p.Savings(); ok && savings.IsPositive() {
		price += " (was $" + p.OriginalPrice.StringFixed(2) + ", save $" + savings.StringFixed(2) + ")"
	}
	return price
}

func stockLabel(inStock bool) string {
	if inStock {
		return "in stock"
	}
	return "out of stock"
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
