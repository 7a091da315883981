package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jamef-tracker/internal/core/logger"
	"jamef-tracker/internal/features/auth/domain"
	"jamef-tracker/internal/features/auth/ports"

	"go.uber.org/zap"
)

// TokenCache hands out a cached bearer credential, refreshing it through the
// TokenFetcher before it gets within the safety margin of its expiry.
//
// Concurrency contract: concurrent callers during a miss may each trigger a
// refresh; the last successful refresh wins. A failed refresh leaves the
// previous token untouched so a later call can retry.
type TokenCache struct {
	fetcher      ports.TokenFetcher
	safetyMargin time.Duration
	logger       *zap.Logger

	// now is swappable for tests.
	now func() time.Time

	mu     sync.Mutex
	cached *domain.Token
}

// NewTokenCache creates a TokenCache with the given fetcher and safety margin.
func NewTokenCache(fetcher ports.TokenFetcher, safetyMargin time.Duration) *TokenCache {
	return &TokenCache{
		fetcher:      fetcher,
		safetyMargin: safetyMargin,
		logger:       logger.Get(),
		now:          time.Now,
	}
}

// Token returns the cached bearer value if more than the safety margin
// remains before its expiry, refreshing it otherwise.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.cached != nil && c.cached.RemainingAt(c.now()) > c.safetyMargin {
		value := c.cached.Value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	// The fetch happens outside the lock: a slow auth endpoint must not
	// serialize unrelated callers that still hold a valid token.
	token, err := c.fetcher.FetchToken(ctx)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	c.mu.Lock()
	c.cached = token
	c.mu.Unlock()

	c.logger.Debug("Credential token refreshed",
		zap.Time("expires_at", token.ExpiresAt),
	)

	return token.Value, nil
}
