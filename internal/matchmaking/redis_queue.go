package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/pkg/distributed"
)

// RedisQueue 여러 인스턴스가 공유하는 매칭 큐 (Sorted Set, score = rating)
// Redis orders equal scores by member bytes, which matches the in-memory tie-break.
type RedisQueue struct {
	zset *distributed.RedisSortedQueue
}

func NewRedisQueue(zset *distributed.RedisSortedQueue) *RedisQueue {
	return &RedisQueue{zset: zset}
}

func (q *RedisQueue) Join(ctx context.Context, playerID string, rating int) error {
	if err := q.zset.Add(ctx, playerID, float64(rating)); err != nil {
		return backendError("join queue", err)
	}
	return nil
}

func (q *RedisQueue) Leave(ctx context.Context, playerID string) error {
	if err := q.zset.Remove(ctx, playerID); err != nil {
		return backendError("leave queue", err)
	}
	return nil
}

func (q *RedisQueue) Size(ctx context.Context) (int, error) {
	size, err := q.zset.Size(ctx)
	if err != nil {
		return 0, backendError("queue size", err)
	}
	return int(size), nil
}

func (q *RedisQueue) PopFront(ctx context.Context, n int) ([]models.QueueEntry, error) {
	members, err := q.zset.PopMin(ctx, n)
	if err != nil {
		return nil, backendError("pop queue", err)
	}
	return toEntries(members), nil
}

func (q *RedisQueue) PopExactly(ctx context.Context, n int) ([]models.QueueEntry, error) {
	members, err := q.zset.PopMinExactly(ctx, n)
	if errors.Is(err, distributed.ErrNotEnoughMembers) {
		return nil, ErrInsufficientPlayers
	}
	if err != nil {
		return nil, backendError("pop queue", err)
	}
	return toEntries(members), nil
}

func (q *RedisQueue) Entries(ctx context.Context) ([]models.QueueEntry, error) {
	members, err := q.zset.Range(ctx)
	if err != nil {
		return nil, backendError("list queue", err)
	}
	return toEntries(members), nil
}

func toEntries(members []distributed.ScoredMember) []models.QueueEntry {
	entries := make([]models.QueueEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, models.QueueEntry{
			PlayerID: m.ID,
			Rating:   int(math.Round(m.Score)),
		})
	}
	return entries
}

func backendError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, repository.ErrBackendUnavailable, err)
}
