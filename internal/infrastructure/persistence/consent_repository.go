package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

const (
	// ConsentKey is the storage key of the cookie consent flag
	ConsentKey = "cookieConsent"
	// consentAccepted is the only stored value that counts as consent
	consentAccepted = "true"
)

// ConsentRepository stores the cookie consent flag
type ConsentRepository struct {
	store shared.KeyValueStore
}

// NewConsentRepository creates a new ConsentRepository
func NewConsentRepository(store shared.KeyValueStore) *ConsentRepository {
	return &ConsentRepository{store: store}
}

// Accepted reports whether consent has been persisted
func (r *ConsentRepository) Accepted(ctx context.Context) (bool, error) {
	value, err := r.store.Get(ctx, ConsentKey)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read consent: %w", err)
	}
	return string(value) == consentAccepted, nil
}

// Accept persists the consent flag
func (r *ConsentRepository) Accept(ctx context.Context) error {
	if err := r.store.Set(ctx, ConsentKey, []byte(consentAccepted)); err != nil {
		return fmt.Errorf("failed to save consent: %w", err)
	}
	return nil
}
