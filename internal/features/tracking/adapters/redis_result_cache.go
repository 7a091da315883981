package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jamef-tracker/internal/core/cache"
	"jamef-tracker/internal/features/tracking/domain"
)

// RedisResultCache implements ports.ResultCache on top of the cache port.
// It deduplicates repeated lookups of the same shipment within the TTL;
// job state itself never touches it.
type RedisResultCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisResultCache creates a new RedisResultCache with the given TTL.
func NewRedisResultCache(c cache.Cache, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{
		cache: c,
		ttl:   ttl,
	}
}

// resultKey namespaces cached lookups by payer and invoice.
func resultKey(invoice, payerID string) string {
	return fmt.Sprintf("tracking:%s:%s", payerID, invoice)
}

// Get returns the cached result for a payer/invoice pair, or (nil, nil) on a miss.
func (r *RedisResultCache) Get(ctx context.Context, invoice, payerID string) (*domain.TrackingResult, error) {
	data, err := r.cache.Get(ctx, resultKey(invoice, payerID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read result cache: %w", err)
	}

	var result domain.TrackingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	return &result, nil
}

// Save stores a completed result for a payer/invoice pair.
func (r *RedisResultCache) Save(ctx context.Context, payerID string, result *domain.TrackingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := r.cache.Set(ctx, resultKey(result.NF, payerID), data, r.ttl); err != nil {
		return fmt.Errorf("failed to save result to cache: %w", err)
	}

	return nil
}
