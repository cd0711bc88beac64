package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rift-augur/rift-augur-backend/internal/models"
)

const DefaultHistoryLimit = 10

// MatchHistory 최근 매치 기록 (최신순, 최대 limit개)
type MatchHistory interface {
	Append(ctx context.Context, record models.MatchRecord) error
	Recent(ctx context.Context) ([]models.MatchRecord, error)
}

// RedisMatchHistory Redis List 기반 기록
type RedisMatchHistory struct {
	client *redis.Client
	key    string
	limit  int
}

func NewRedisMatchHistory(client *redis.Client, limit int) *RedisMatchHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RedisMatchHistory{
		client: client,
		key:    "matches:recent",
		limit:  limit,
	}
}

// Append LPUSH + LTRIM을 MULTI로 묶어 길이가 limit을 넘지 않게 한다
func (h *RedisMatchHistory) Append(ctx context.Context, record models.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, h.key, data)
		pipe.LTrim(ctx, h.key, 0, int64(h.limit-1))
		return nil
	})
	if err != nil {
		return unavailable("append match record", err)
	}
	return nil
}

func (h *RedisMatchHistory) Recent(ctx context.Context) ([]models.MatchRecord, error) {
	items, err := h.client.LRange(ctx, h.key, 0, int64(h.limit-1)).Result()
	if err != nil {
		return nil, unavailable("read match history", err)
	}

	records := make([]models.MatchRecord, 0, len(items))
	for _, item := range items {
		var record models.MatchRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// MemoryMatchHistory in-memory 기록
type MemoryMatchHistory struct {
	mu      sync.RWMutex
	records []models.MatchRecord
	limit   int
}

func NewMemoryMatchHistory(limit int) *MemoryMatchHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryMatchHistory{limit: limit}
}

func (h *MemoryMatchHistory) Append(_ context.Context, record models.MatchRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := make([]models.MatchRecord, 0, h.limit)
	records = append(records, record)
	for _, r := range h.records {
		if len(records) == h.limit {
			break
		}
		records = append(records, r)
	}
	h.records = records
	return nil
}

func (h *MemoryMatchHistory) Recent(context.Context) ([]models.MatchRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.MatchRecord, len(h.records))
	copy(out, h.records)
	return out, nil
}
