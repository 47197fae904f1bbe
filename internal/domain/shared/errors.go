package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// ErrProductUnavailable is returned when adding a missing or out-of-stock product to the cart.
	ErrProductUnavailable = NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available.")
	// ErrLoadFailure is returned when the catalog could not be populated.
	ErrLoadFailure = NewDomainError("LOAD_FAILURE", "Failed to load products. Please try again.")
	// ErrStorageCorrupt marks persisted state that could not be decoded.
	// It is recovered locally and never surfaced to callers.
	ErrStorageCorrupt = NewDomainError("STORAGE_CORRUPT", "Stored data is corrupt")
)
