package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/pkg/distributed"
)

const (
	DefaultLedgerTTL = 24 * time.Hour

	// in-process ledger 크기 (claim 하나당 수십 바이트)
	memoryLedgerSize = 8 * 1024 * 1024
)

// ResultLedger 매치 결과 중복 반영 방지
//
// Claims are per (match, player): a retried report only reaches the players
// whose earlier update was released after a backend failure.
type ResultLedger interface {
	// Claim returns a token on first claim and ErrResultAlreadyReported while held.
	Claim(ctx context.Context, matchID, playerID string) (string, error)
	Release(ctx context.Context, matchID, playerID, token string) error
}

// ledgerKey 구분자가 id에 섞여도 충돌하지 않도록 match id 길이를 앞에 둔다
func ledgerKey(matchID, playerID string) string {
	return fmt.Sprintf("%d:%s:%s", len(matchID), matchID, playerID)
}

// MemoryResultLedger freecache 기반 in-process ledger
type MemoryResultLedger struct {
	mu    sync.Mutex
	cache *freecache.Cache
	ttl   int
}

func NewMemoryResultLedger(ttl time.Duration) *MemoryResultLedger {
	return newMemoryResultLedger(freecache.NewCache(memoryLedgerSize), ttl)
}

func newMemoryResultLedger(cache *freecache.Cache, ttl time.Duration) *MemoryResultLedger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &MemoryResultLedger{cache: cache, ttl: seconds}
}

func (l *MemoryResultLedger) Claim(_ context.Context, matchID, playerID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token := uuid.New().String()
	existing, err := l.cache.GetOrSet([]byte(ledgerKey(matchID, playerID)), []byte(token), l.ttl)
	if err != nil {
		return "", fmt.Errorf("claim match result: %w: %v", repository.ErrBackendUnavailable, err)
	}
	if existing != nil {
		return "", ErrResultAlreadyReported
	}
	return token, nil
}

func (l *MemoryResultLedger) Release(_ context.Context, matchID, playerID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := []byte(ledgerKey(matchID, playerID))
	held, err := l.cache.Get(key)
	if errors.Is(err, freecache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release match result: %w: %v", repository.ErrBackendUnavailable, err)
	}
	if bytes.Equal(held, []byte(token)) {
		l.cache.Del(key)
	}
	return nil
}

// RedisResultLedger 인스턴스 간 공유 ledger (SET NX PX)
type RedisResultLedger struct {
	claims *distributed.RedisClaimStore
	ttl    time.Duration
}

func NewRedisResultLedger(claims *distributed.RedisClaimStore, ttl time.Duration) *RedisResultLedger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &RedisResultLedger{claims: claims, ttl: ttl}
}

func (l *RedisResultLedger) Claim(ctx context.Context, matchID, playerID string) (string, error) {
	token := uuid.New().String()
	err := l.claims.Claim(ctx, ledgerKey(matchID, playerID), token, l.ttl)
	if errors.Is(err, distributed.ErrAlreadyClaimed) {
		return "", ErrResultAlreadyReported
	}
	if err != nil {
		return "", fmt.Errorf("claim match result: %w: %v", repository.ErrBackendUnavailable, err)
	}
	return token, nil
}

func (l *RedisResultLedger) Release(ctx context.Context, matchID, playerID, token string) error {
	err := l.claims.Release(ctx, ledgerKey(matchID, playerID), token)
	if err != nil && !errors.Is(err, distributed.ErrClaimNotHeld) {
		return fmt.Errorf("release match result: %w: %v", repository.ErrBackendUnavailable, err)
	}
	return nil
}
