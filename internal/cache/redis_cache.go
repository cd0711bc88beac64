package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"go.uber.org/zap"
)

// RedisProfileCache Redis 기반 프로필 캐시
// key: profile:<player_id>, value: JSON 스냅샷
type RedisProfileCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisProfileCache(client *redis.Client, logger *zap.Logger) *RedisProfileCache {
	return &RedisProfileCache{
		client: client,
		prefix: "profile:",
		logger: logger.Named("cache"),
	}
}

func (c *RedisProfileCache) key(playerID string) string {
	return c.prefix + playerID
}

func (c *RedisProfileCache) Get(ctx context.Context, playerID string) (*models.PlayerProfile, bool) {
	data, err := c.client.Get(ctx, c.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if err != nil {
		c.absorb("get", playerID, err)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var profile models.PlayerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		// 깨진 항목은 지우고 miss 처리
		c.absorb("decode", playerID, err)
		c.Invalidate(ctx, playerID)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &profile, true
}

func (c *RedisProfileCache) Put(ctx context.Context, profile *models.PlayerProfile, ttl time.Duration) {
	if profile == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(profile)
	if err != nil {
		c.absorb("encode", profile.PlayerID, err)
		return
	}

	if err := c.client.Set(ctx, c.key(profile.PlayerID), data, ttl).Err(); err != nil {
		c.absorb("put", profile.PlayerID, err)
	}
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, playerID string) {
	if err := c.client.Del(ctx, c.key(playerID)).Err(); err != nil {
		c.absorb("invalidate", playerID, err)
	}
}

func (c *RedisProfileCache) absorb(op, playerID string, err error) {
	metrics.CacheErrors.Inc()
	c.logger.Warn("Profile cache operation failed",
		zap.String("op", op),
		zap.String("player_id", playerID),
		zap.Error(err),
	)
}
