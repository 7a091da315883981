package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter, mr
}

// TestRedisAdapter_SetGet verifies a stored value round-trips.
func TestRedisAdapter_SetGet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "key-a", []byte("value-a"), time.Minute))

	value, err := adapter.Get(ctx, "key-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("value-a"), value)
}

// TestRedisAdapter_GetMissing verifies a missing key maps to ErrKeyNotFound.
func TestRedisAdapter_GetMissing(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	value, err := adapter.Get(context.Background(), "never-set")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// TestRedisAdapter_TTLExpiry verifies values disappear after their TTL.
func TestRedisAdapter_TTLExpiry(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "key-a", []byte("value-a"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := adapter.Get(ctx, "key-a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// TestRedisAdapter_Delete verifies deletion removes the key.
func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "key-a", []byte("value-a"), time.Minute))
	require.NoError(t, adapter.Delete(ctx, "key-a"))

	_, err := adapter.Get(ctx, "key-a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// TestRedisAdapter_Ping verifies connectivity checks against a live server.
func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	assert.NoError(t, adapter.Ping(context.Background()))
}

// TestRedisAdapter_BadURL verifies an unparseable URL fails construction.
func TestRedisAdapter_BadURL(t *testing.T) {
	adapter, err := NewRedisAdapter("not-a-redis-url")
	assert.Nil(t, adapter)
	assert.Error(t, err)
}
