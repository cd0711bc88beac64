package matchmaking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"github.com/rift-augur/rift-augur-backend/pkg/distributed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQueue(t *testing.T) *RedisQueue {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisQueue(distributed.NewRedisSortedQueue(client, "matchmaking"))
}

func queues(t *testing.T) map[string]Queue {
	return map[string]Queue{
		"memory": NewMemoryQueue(),
		"redis":  newRedisQueue(t),
	}
}

func ids(entries []models.QueueEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.PlayerID)
	}
	return out
}

func TestQueue_RejoinUpdatesInPlace(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, q.Join(ctx, "p1", 1000))
			require.NoError(t, q.Join(ctx, "p2", 1100))
			require.NoError(t, q.Join(ctx, "p1", 1200))

			size, err := q.Size(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, size)

			entries, err := q.Entries(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.QueueEntry{
				{PlayerID: "p2", Rating: 1100},
				{PlayerID: "p1", Rating: 1200},
			}, entries)
		})
	}
}

func TestQueue_DeterministicOrder(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// 도착 순서와 무관하게 (rating, player_id) 순
			for _, e := range []models.QueueEntry{
				{PlayerID: "d", Rating: 1000},
				{PlayerID: "b", Rating: 1000},
				{PlayerID: "z", Rating: 900},
				{PlayerID: "a", Rating: 1100},
				{PlayerID: "c", Rating: 1000},
			} {
				require.NoError(t, q.Join(ctx, e.PlayerID, e.Rating))
			}

			popped, err := q.PopFront(ctx, 4)
			require.NoError(t, err)
			assert.Equal(t, []string{"z", "b", "c", "d"}, ids(popped))
		})
	}
}

func TestQueue_PopFrontBounds(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, q.Join(ctx, "p1", 1000))
			require.NoError(t, q.Join(ctx, "p2", 1000))

			popped, err := q.PopFront(ctx, 5)
			require.NoError(t, err)
			assert.Len(t, popped, 2)

			popped, err = q.PopFront(ctx, 5)
			require.NoError(t, err)
			assert.Empty(t, popped)
		})
	}
}

func TestQueue_PopExactlyAllOrNothing(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 9; i++ {
				require.NoError(t, q.Join(ctx, fmt.Sprintf("p%d", i), 1000))
			}

			_, err := q.PopExactly(ctx, 10)
			assert.ErrorIs(t, err, ErrInsufficientPlayers)

			size, err := q.Size(ctx)
			require.NoError(t, err)
			assert.Equal(t, 9, size)

			require.NoError(t, q.Join(ctx, "p9", 1000))
			popped, err := q.PopExactly(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, popped, 10)

			size, err = q.Size(ctx)
			require.NoError(t, err)
			assert.Zero(t, size)
		})
	}
}

func TestQueue_LeaveIsIdempotent(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, q.Join(ctx, "p1", 1000))
			require.NoError(t, q.Join(ctx, "p2", 1000))

			require.NoError(t, q.Leave(ctx, "p1"))
			require.NoError(t, q.Leave(ctx, "p1"))
			require.NoError(t, q.Leave(ctx, "ghost"))

			entries, err := q.Entries(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"p2"}, ids(entries))
		})
	}
}

func TestQueue_ConcurrentJoinAndPop(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const players = 200

			var (
				mu     sync.Mutex
				drawn  = make(map[string]int)
				wg     sync.WaitGroup
				joinWG sync.WaitGroup
			)

			for i := 0; i < players; i++ {
				joinWG.Add(1)
				go func(i int) {
					defer joinWG.Done()
					assert.NoError(t, q.Join(ctx, fmt.Sprintf("p%03d", i), 1000+i%13))
				}(i)
			}

			done := make(chan struct{})
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						popped, err := q.PopExactly(ctx, 10)
						if err == nil {
							mu.Lock()
							for _, e := range popped {
								drawn[e.PlayerID]++
							}
							mu.Unlock()
							continue
						}
						select {
						case <-done:
							return
						default:
						}
					}
				}()
			}

			joinWG.Wait()
			close(done)
			wg.Wait()

			// 남은 인원까지 정리
			rest, err := q.PopFront(ctx, players)
			require.NoError(t, err)
			for _, e := range rest {
				drawn[e.PlayerID]++
			}

			assert.Len(t, drawn, players)
			for id, count := range drawn {
				assert.Equal(t, 1, count, "player %s drawn more than once", id)
			}
		})
	}
}

func TestRedisQueue_BackendUnavailable(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()
	q := NewRedisQueue(distributed.NewRedisSortedQueue(client, "matchmaking"))
	s.Close()

	err := q.Join(context.Background(), "p1", 1000)
	assert.ErrorIs(t, err, repository.ErrBackendUnavailable)

	_, err = q.PopExactly(context.Background(), 10)
	assert.ErrorIs(t, err, repository.ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrInsufficientPlayers)
}

func TestSplitTeams(t *testing.T) {
	entries := []models.QueueEntry{
		{PlayerID: "a", Rating: 900},
		{PlayerID: "b", Rating: 950},
		{PlayerID: "c", Rating: 1000},
		{PlayerID: "d", Rating: 1050},
	}

	teamA, teamB := SplitTeams(entries)
	assert.Equal(t, []string{"a", "b"}, teamA)
	assert.Equal(t, []string{"c", "d"}, teamB)
}
