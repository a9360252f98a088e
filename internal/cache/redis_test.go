package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultantpdf/config"
)

func newRedis(t *testing.T, expiry time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{URL: "redis://" + mr.Addr(), Expiry: expiry})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	week := 7 * 24 * time.Hour

	t.Run("MissingKey", func(t *testing.T) {
		c, _ := newRedis(t, 0)
		payload, ok, err := c.ReadFresh(ctx, "specialities.json", week)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, payload)

		_, ok, err = c.ReadStale(ctx, "specialities.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("WriteUsesPrefixAndOverwrites", func(t *testing.T) {
		c, mr := newRedis(t, 0)
		require.NoError(t, c.Write(ctx, "plans.json", json.RawMessage(`{"plans":[]}`)))
		require.NoError(t, c.Write(ctx, "plans.json", json.RawMessage(`{"plans":[{"name":"360 Care Select"}]}`)))

		assert.True(t, mr.Exists(DefaultRedisPrefix+"plans.json"))
		payload, ok, err := c.ReadStale(ctx, "plans.json")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"plans":[{"name":"360 Care Select"}]}`, string(payload))
	})

	t.Run("FreshnessBoundary", func(t *testing.T) {
		c, _ := newRedis(t, 0)
		now := time.Now().Truncate(time.Second)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Write(ctx, "approved-hospitals.json", json.RawMessage(`[]`)))

		c.now = func() time.Time { return now.Add(week) }
		_, ok, err := c.ReadFresh(ctx, "approved-hospitals.json", week)
		require.NoError(t, err)
		assert.True(t, ok, "an entry exactly max_age old is still fresh")

		c.now = func() time.Time { return now.Add(week + time.Second) }
		_, ok, err = c.ReadFresh(ctx, "approved-hospitals.json", week)
		require.NoError(t, err)
		assert.False(t, ok, "an entry older than max_age is not fresh")

		payload, ok, err := c.ReadStale(ctx, "approved-hospitals.json")
		require.NoError(t, err)
		require.True(t, ok, "stale read ignores age")
		assert.Equal(t, "[]", string(payload))
	})

	t.Run("NoExpiryKeepsStaleEntries", func(t *testing.T) {
		c, mr := newRedis(t, 0)
		require.NoError(t, c.Write(ctx, "specialities.json", json.RawMessage(`[]`)))
		assert.Equal(t, time.Duration(0), mr.TTL(DefaultRedisPrefix+"specialities.json"))

		mr.FastForward(365 * 24 * time.Hour)
		_, ok, err := c.ReadStale(ctx, "specialities.json")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ExpirySetsTTL", func(t *testing.T) {
		c, mr := newRedis(t, time.Hour)
		require.NoError(t, c.Write(ctx, "specialities.json", json.RawMessage(`[]`)))
		assert.Equal(t, time.Hour, mr.TTL(DefaultRedisPrefix+"specialities.json"))

		mr.FastForward(2 * time.Hour)
		_, ok, err := c.ReadStale(ctx, "specialities.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("CorruptValueIsAnError", func(t *testing.T) {
		c, mr := newRedis(t, 0)
		require.NoError(t, mr.Set(DefaultRedisPrefix+"x.json", "garbage"))

		_, ok, err := c.ReadStale(ctx, "x.json")
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(RedisConfig{URL: "redis://" + addr})
	require.Error(t, err)
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(config.CacheConfig{Type: "redis", Redis: config.RedisConfig{URL: "redis://" + mr.Addr()}})
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.(*RedisCache)
	assert.True(t, ok)
}
