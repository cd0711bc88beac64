package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRateLimiter(t *testing.T, limit int) *RedisRateLimiter {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisRateLimiter(client, "test:ratelimit:", limit, time.Minute)
}

func TestRedisRateLimiter_TokenBucket(t *testing.T) {
	limiter := setupRedisRateLimiter(t, 5)
	ctx := context.Background()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		allowed, info, err := limiter.AllowWithInfo(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5-i-1, info.Remaining)
	}

	allowed, info, err := limiter.AllowWithInfo(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 5, info.Limit)
}

func TestRedisRateLimiter_Refill(t *testing.T) {
	limiter := setupRedisRateLimiter(t, 60)
	ctx := context.Background()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		allowed, _, err := limiter.AllowWithInfo(ctx, "ip:1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, _, err := limiter.AllowWithInfo(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(time.Second)
	allowed, _, err = limiter.AllowWithInfo(ctx, "ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_ResetAndKeys(t *testing.T) {
	limiter := setupRedisRateLimiter(t, 1)
	ctx := context.Background()

	allowed, _, err := limiter.AllowWithInfo(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.AllowWithInfo(ctx, "a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, err = limiter.AllowWithInfo(ctx, "b")
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "a"))
	allowed, _, err = limiter.AllowWithInfo(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_InvalidRedis(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()
	limiter := NewRedisRateLimiter(client, "", 5, time.Minute)
	s.Close()

	_, _, err := limiter.AllowWithInfo(context.Background(), "k")
	assert.Error(t, err)
}
