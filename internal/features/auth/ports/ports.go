package ports

import (
	"context"

	"jamef-tracker/internal/features/auth/domain"
)

// TokenFetcher defines the secondary port for obtaining a fresh credential
// from the carrier's auth endpoint.
type TokenFetcher interface {
	// FetchToken performs the network call and returns the new token with
	// its absolute expiry.
	FetchToken(ctx context.Context) (*domain.Token, error)
}

// TokenSource defines the primary port consumed by authenticated adapters.
type TokenSource interface {
	// Token returns a bearer value that is guaranteed to remain valid for
	// at least the configured safety margin.
	Token(ctx context.Context) (string, error)
}
