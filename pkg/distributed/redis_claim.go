package distributed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyClaimed = errors.New("key already claimed")
	ErrClaimNotHeld   = errors.New("claim not held")
)

var releaseClaimScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisClaimStore SET NX 기반 일회성 claim
// 한 key는 TTL 동안 최초 owner만 가진다.
type RedisClaimStore struct {
	client *redis.Client
	prefix string
}

func NewRedisClaimStore(client *redis.Client, prefix string) *RedisClaimStore {
	return &RedisClaimStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisClaimStore) key(name string) string {
	return s.prefix + name
}

// Claim key 선점 (이미 있으면 ErrAlreadyClaimed)
func (s *RedisClaimStore) Claim(ctx context.Context, name, owner string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.key(name), owner, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to claim %s: %w", name, err)
	}
	if !ok {
		return ErrAlreadyClaimed
	}
	return nil
}

// Release 자신이 가진 claim만 해제 (Lua로 비교 후 삭제)
func (s *RedisClaimStore) Release(ctx context.Context, name, owner string) error {
	result, err := releaseClaimScript.Run(ctx, s.client, []string{s.key(name)}, owner).Int()
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", name, err)
	}
	if result == 0 {
		return ErrClaimNotHeld
	}
	return nil
}

// Owner 현재 owner 조회 (없으면 "")
func (s *RedisClaimStore) Owner(ctx context.Context, name string) (string, error) {
	owner, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read claim %s: %w", name, err)
	}
	return owner, nil
}
