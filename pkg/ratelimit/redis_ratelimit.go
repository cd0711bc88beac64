package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 토큰 리필 + 소비를 한 번에 (ms 단위)
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local tokens_key = key .. ":tokens"
	local timestamp_key = key .. ":timestamp"

	local tokens = tonumber(redis.call('GET', tokens_key))
	local last_update = tonumber(redis.call('GET', timestamp_key))

	if tokens == nil or last_update == nil then
		tokens = limit
		last_update = now
	end

	local elapsed = math.max(0, now - last_update)
	local refill_rate = limit / window
	local new_tokens = math.min(limit, tokens + (elapsed * refill_rate))

	local allowed = 0
	if new_tokens >= 1 then
		new_tokens = new_tokens - 1
		allowed = 1
	end

	redis.call('SET', tokens_key, tostring(new_tokens), 'PX', window * 2)
	redis.call('SET', timestamp_key, now, 'PX', window * 2)

	return {allowed, math.floor(new_tokens), now + window}
`)

// RedisRateLimiter Redis 기반 분산 Rate Limiter (Token Bucket 알고리즘)
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRedisRateLimiter Redis 기반 Rate Limiter 생성
func NewRedisRateLimiter(client *redis.Client, keyPrefix string, limit int, window time.Duration) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RedisRateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

// AllowWithInfo 요청 허용 여부와 상세 정보 반환
func (r *RedisRateLimiter) AllowWithInfo(ctx context.Context, key string) (bool, *Info, error) {
	now := r.now().UnixMilli()

	result, err := tokenBucketScript.Run(ctx, r.client, []string{r.keyPrefix + key},
		r.limit, r.window.Milliseconds(), now).Slice()
	if err != nil {
		return false, nil, fmt.Errorf("redis script execution failed: %w", err)
	}
	if len(result) < 3 {
		return false, nil, fmt.Errorf("invalid script result")
	}

	allowed, _ := result[0].(int64)
	remaining, _ := result[1].(int64)
	resetMs, _ := result[2].(int64)

	return allowed == 1, &Info{
		Limit:     r.limit,
		Remaining: int(remaining),
		ResetTime: time.UnixMilli(resetMs),
	}, nil
}

// Reset 특정 키의 Rate Limit 초기화
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	redisKey := r.keyPrefix + key
	if err := r.client.Del(ctx, redisKey+":tokens", redisKey+":timestamp").Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
