package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocalCache(t *testing.T) *LocalCache {
	t.Helper()
	c := NewLocalCache(time.Minute, zap.NewNop()).(*LocalCache)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLocalCache_SetGetDelete(t *testing.T) {
	c := newTestLocalCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "report:content:r1", "report body", time.Minute))

	got, err := c.Get(ctx, "report:content:r1")
	require.NoError(t, err)
	assert.Equal(t, "report body", got)

	require.NoError(t, c.Delete(ctx, "report:content:r1"))
	_, err = c.Get(ctx, "report:content:r1")
	assert.Error(t, err)
}

func TestLocalCache_MissOnUnknownKey(t *testing.T) {
	c := newTestLocalCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestLocalCache_Expiration(t *testing.T) {
	c := newTestLocalCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.Error(t, err, "expired entries must read as misses")

	// Zero expiration means no deadline.
	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestLocalCache_MarshalsNonStringValues(t *testing.T) {
	c := newTestLocalCache(t)
	ctx := context.Background()

	type page struct {
		Page int `json:"page"`
		Size int `json:"size"`
	}
	require.NoError(t, c.Set(ctx, "reports:page:0:size:16", page{Page: 0, Size: 16}, time.Minute))

	got, err := c.Get(ctx, "reports:page:0:size:16")
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":0,"size":16}`, got)
}

func TestLocalCache_Sweep(t *testing.T) {
	c := newTestLocalCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "stale", "v", time.Nanosecond))
	require.NoError(t, c.Set(ctx, "fresh", "v", time.Hour))
	time.Sleep(5 * time.Millisecond)

	c.sweep()

	c.mu.RLock()
	_, staleKept := c.items["stale"]
	_, freshKept := c.items["fresh"]
	c.mu.RUnlock()
	assert.False(t, staleKept)
	assert.True(t, freshKept)
}
