package distributed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var ErrNotEnoughMembers = errors.New("not enough members in queue")

// ScoredMember Sorted Set 멤버
type ScoredMember struct {
	ID    string
	Score float64
}

// 최대 n개를 원자적으로 꺼낸다
var popMinScript = redis.NewScript(`
	return redis.call('ZPOPMIN', KEYS[1], tonumber(ARGV[1]))
`)

// 정확히 n개가 있을 때만 꺼낸다 (부족하면 아무것도 제거하지 않음)
var popMinExactlyScript = redis.NewScript(`
	local n = tonumber(ARGV[1])
	if redis.call('ZCARD', KEYS[1]) < n then
		return {}
	end
	return redis.call('ZPOPMIN', KEYS[1], n)
`)

// RedisSortedQueue Redis Sorted Set 기반 우선순위 큐
//
// Members are ordered by score ascending, then by member bytes ascending,
// which is Redis' own ordering for equal scores.
type RedisSortedQueue struct {
	client   *redis.Client
	queueKey string
}

// NewRedisSortedQueue Redis Queue 생성
func NewRedisSortedQueue(client *redis.Client, queueName string) *RedisSortedQueue {
	return &RedisSortedQueue{
		client:   client,
		queueKey: fmt.Sprintf("queue:%s", queueName),
	}
}

// Add 멤버 추가 또는 score 갱신
func (q *RedisSortedQueue) Add(ctx context.Context, id string, score float64) error {
	if err := q.client.ZAdd(ctx, q.queueKey, redis.Z{Score: score, Member: id}).Err(); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// Remove 멤버 제거 (없으면 no-op)
func (q *RedisSortedQueue) Remove(ctx context.Context, id string) error {
	if err := q.client.ZRem(ctx, q.queueKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// Size 큐 크기 조회
func (q *RedisSortedQueue) Size(ctx context.Context) (int64, error) {
	size, err := q.client.ZCard(ctx, q.queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue size: %w", err)
	}
	return size, nil
}

// PopMin score가 가장 낮은 멤버를 최대 n개 꺼낸다
func (q *RedisSortedQueue) PopMin(ctx context.Context, n int) ([]ScoredMember, error) {
	if n <= 0 {
		return []ScoredMember{}, nil
	}

	result, err := popMinScript.Run(ctx, q.client, []string{q.queueKey}, n).Slice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to pop members: %w", err)
	}
	return parseScoredMembers(result)
}

// PopMinExactly 정확히 n개를 꺼내거나 ErrNotEnoughMembers
func (q *RedisSortedQueue) PopMinExactly(ctx context.Context, n int) ([]ScoredMember, error) {
	if n <= 0 {
		return []ScoredMember{}, nil
	}

	result, err := popMinExactlyScript.Run(ctx, q.client, []string{q.queueKey}, n).Slice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to pop members: %w", err)
	}

	members, err := parseScoredMembers(result)
	if err != nil {
		return nil, err
	}
	if len(members) < n {
		return nil, ErrNotEnoughMembers
	}
	return members, nil
}

// Range 전체 멤버 조회 (순서대로, 제거하지 않음)
func (q *RedisSortedQueue) Range(ctx context.Context) ([]ScoredMember, error) {
	zs, err := q.client.ZRangeWithScores(ctx, q.queueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range members: %w", err)
	}

	members := make([]ScoredMember, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, ScoredMember{ID: id, Score: z.Score})
	}
	return members, nil
}

// parseScoredMembers ZPOPMIN 응답 [member, score, member, score, ...] 파싱
func parseScoredMembers(flat []interface{}) ([]ScoredMember, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("malformed pop reply of length %d", len(flat))
	}

	members := make([]ScoredMember, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		id, ok := flat[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T", flat[i])
		}

		var score float64
		switch v := flat[i+1].(type) {
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid score %q: %w", v, err)
			}
			score = parsed
		case int64:
			score = float64(v)
		default:
			return nil, fmt.Errorf("unexpected score type %T", v)
		}

		members = append(members, ScoredMember{ID: id, Score: score})
	}
	return members, nil
}
