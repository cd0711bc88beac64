package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/internal/models"
)

const DefaultTTL = 300 * time.Second

// ProfileCache 프로필 read-through 캐시
// 캐시는 보조 수단이므로 실패는 호출자에게 전달되지 않는다 (miss / no-op 처리).
type ProfileCache interface {
	Get(ctx context.Context, playerID string) (*models.PlayerProfile, bool)
	Put(ctx context.Context, profile *models.PlayerProfile, ttl time.Duration)
	Invalidate(ctx context.Context, playerID string)
}

// DefaultMemoryCacheSize in-process 캐시 크기 (bytes)
const DefaultMemoryCacheSize = 16 * 1024 * 1024

// MemoryProfileCache freecache 기반 in-process TTL 캐시
// Entries are JSON snapshots, so callers never share a profile with the cache.
type MemoryProfileCache struct {
	cache *freecache.Cache
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return NewMemoryProfileCacheWith(freecache.NewCache(DefaultMemoryCacheSize))
}

// NewMemoryProfileCacheWith 미리 만든 freecache 사용 (크기/타이머 지정용)
func NewMemoryProfileCacheWith(cache *freecache.Cache) *MemoryProfileCache {
	return &MemoryProfileCache{cache: cache}
}

func (c *MemoryProfileCache) Get(_ context.Context, playerID string) (*models.PlayerProfile, bool) {
	data, err := c.cache.Get([]byte(playerID))
	if err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var profile models.PlayerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		metrics.CacheErrors.Inc()
		c.cache.Del([]byte(playerID))
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &profile, true
}

func (c *MemoryProfileCache) Put(_ context.Context, profile *models.PlayerProfile, ttl time.Duration) {
	if profile == nil {
		return
	}

	data, err := json.Marshal(profile)
	if err != nil {
		metrics.CacheErrors.Inc()
		return
	}
	// 값이 너무 크면 저장되지 않을 뿐 (다음 조회는 miss)
	if err := c.cache.Set([]byte(profile.PlayerID), data, ttlSeconds(ttl)); err != nil {
		metrics.CacheErrors.Inc()
	}
}

func (c *MemoryProfileCache) Invalidate(_ context.Context, playerID string) {
	c.cache.Del([]byte(playerID))
}

// ttlSeconds freecache는 초 단위, 0은 만료 없음이므로 최소 1초
func ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// NoopCache CACHE_ENABLED=false 일 때 사용
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.PlayerProfile, bool) {
	metrics.CacheMisses.Inc()
	return nil, false
}

func (NoopCache) Put(context.Context, *models.PlayerProfile, time.Duration) {}

func (NoopCache) Invalidate(context.Context, string) {}
