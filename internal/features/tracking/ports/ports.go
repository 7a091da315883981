package ports

import (
	"context"

	"jamef-tracker/internal/features/tracking/domain"
)

// Fetcher defines the interface for carrier tracking lookups.
// Two interchangeable implementations exist: the authenticated REST API
// strategy and the headless-browser scraping strategy.
type Fetcher interface {
	// Fetch retrieves the tracking result for an invoice number and payer
	// document. It returns domain.ErrNotFound (possibly wrapped) when the
	// carrier has no records for the pair.
	Fetch(ctx context.Context, invoice, payerID string) (*domain.TrackingResult, error)
}

// ResultCache defines the secondary port for caching completed lookups.
type ResultCache interface {
	// Get returns the cached result for a payer/invoice pair, or (nil, nil)
	// on a cache miss.
	Get(ctx context.Context, invoice, payerID string) (*domain.TrackingResult, error)
	// Save stores a completed result for a payer/invoice pair.
	Save(ctx context.Context, payerID string, result *domain.TrackingResult) error
}
