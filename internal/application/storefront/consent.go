package storefront

import (
	"context"
	"slices"
	"strings"
)

// ConsentStore persists the cookie consent flag
type ConsentStore interface {
	Accepted(ctx context.Context) (bool, error)
	Accept(ctx context.Context) error
}

// ConsentStatus describes whether the cookie banner should be shown
type ConsentStatus struct {
	Country        string `json:"country"`
	InJurisdiction bool   `json:"in_jurisdiction"`
	Accepted       bool   `json:"accepted"`
	NeedsConsent   bool   `json:"needs_consent"`
}

// ConsentService decides whether cookie consent must be asked for.
// The shopper's country is fixed by configuration; no lookup is made.
type ConsentService struct {
	store         ConsentStore
	country       string
	jurisdictions []string
}

// NewConsentService creates a ConsentService
func NewConsentService(store ConsentStore, country string, jurisdictions []string) *ConsentService {
	normalized := make([]string, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(j)))
	}
	return &ConsentService{
		store:         store,
		country:       strings.ToUpper(strings.TrimSpace(country)),
		jurisdictions: normalized,
	}
}

// Country returns the configured country code
func (s *ConsentService) Country() string {
	return s.country
}

// InJurisdiction reports whether the country requires consent
func (s *ConsentService) InJurisdiction() bool {
	return slices.Contains(s.jurisdictions, s.country)
}

// NeedsConsent is true when the country requires consent and it has not
// been given yet
func (s *ConsentService) NeedsConsent(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.NeedsConsent, nil
}

// Status returns the full consent state. The store is only read for
// countries that require consent.
func (s *ConsentService) Status(ctx context.Context) (ConsentStatus, error) {
	status := ConsentStatus{Country: s.country, InJurisdiction: s.InJurisdiction()}
	if !status.InJurisdiction {
		return status, nil
	}

	accepted, err := s.store.Accepted(ctx)
	if err != nil {
		return ConsentStatus{}, err
	}
	status.Accepted = accepted
	status.NeedsConsent = !accepted
	return status, nil
}

// Accept records the shopper's consent
func (s *ConsentService) Accept(ctx context.Context) error {
	return s.store.Accept(ctx)
}
