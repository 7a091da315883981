package adapters

import (
	"context"
	"testing"
	"time"

	"jamef-tracker/internal/core/cache"
	"jamef-tracker/internal/features/tracking/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResultCache(t *testing.T, ttl time.Duration) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return NewRedisResultCache(adapter, ttl), mr
}

// TestRedisResultCache_RoundTrip verifies a saved result comes back intact
// for the same payer/invoice pair.
func TestRedisResultCache_RoundTrip(t *testing.T) {
	resultCache, _ := newResultCache(t, 10*time.Minute)
	ctx := context.Background()

	saved := domain.NewResult("123456", "São Paulo - SP", "Recife - PE", "10/01/2026", []domain.TrackingEvent{
		{Data: "02/01/2026 08:15", Status: "Em trânsito"},
		{Data: "01/01/2026 14:30", Status: "Coletado"},
	})
	require.NoError(t, resultCache.Save(ctx, "48775191000190", saved))

	loaded, err := resultCache.Get(ctx, "123456", "48775191000190")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.NF, loaded.NF)
	assert.Equal(t, saved.StatusAtual, loaded.StatusAtual)
	assert.Equal(t, saved.Historico, loaded.Historico)
}

// TestRedisResultCache_Miss verifies an absent entry is a (nil, nil) miss,
// not an error.
func TestRedisResultCache_Miss(t *testing.T) {
	resultCache, _ := newResultCache(t, 10*time.Minute)

	loaded, err := resultCache.Get(context.Background(), "999999", "48775191000190")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

// TestRedisResultCache_KeyedByPayer verifies the same invoice under another
// payer does not share a cache entry.
func TestRedisResultCache_KeyedByPayer(t *testing.T) {
	resultCache, _ := newResultCache(t, 10*time.Minute)
	ctx := context.Background()

	saved := domain.NewResult("123456", "", "", "", nil)
	require.NoError(t, resultCache.Save(ctx, "48775191000190", saved))

	loaded, err := resultCache.Get(ctx, "123456", "00000000000191")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

// TestRedisResultCache_Expiry verifies entries honor the configured TTL.
func TestRedisResultCache_Expiry(t *testing.T) {
	resultCache, mr := newResultCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, resultCache.Save(ctx, "48775191000190", domain.NewResult("123456", "", "", "", nil)))
	mr.FastForward(2 * time.Second)

	loaded, err := resultCache.Get(ctx, "123456", "48775191000190")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
