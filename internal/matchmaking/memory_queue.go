package matchmaking

import (
	"context"
	"sort"
	"sync"

	"github.com/rift-augur/rift-augur-backend/internal/models"
)

// MemoryQueue in-process 매칭 큐
// entries는 항상 정렬 상태를 유지한다.
type MemoryQueue struct {
	mu      sync.Mutex
	entries []models.QueueEntry
	ratings map[string]int
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		ratings: make(map[string]int),
	}
}

func (q *MemoryQueue) Join(_ context.Context, playerID string, rating int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if current, exists := q.ratings[playerID]; exists {
		q.removeLocked(models.QueueEntry{PlayerID: playerID, Rating: current})
	}

	entry := models.QueueEntry{PlayerID: playerID, Rating: rating}
	i := sort.Search(len(q.entries), func(i int) bool {
		return !less(q.entries[i], entry)
	})
	q.entries = append(q.entries, models.QueueEntry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = entry
	q.ratings[playerID] = rating

	return nil
}

func (q *MemoryQueue) Leave(_ context.Context, playerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if rating, exists := q.ratings[playerID]; exists {
		q.removeLocked(models.QueueEntry{PlayerID: playerID, Rating: rating})
	}
	return nil
}

func (q *MemoryQueue) Size(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries), nil
}

func (q *MemoryQueue) PopFront(_ context.Context, n int) ([]models.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > len(q.entries) {
		n = len(q.entries)
	}
	return q.popLocked(n), nil
}

func (q *MemoryQueue) PopExactly(_ context.Context, n int) ([]models.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > len(q.entries) {
		return nil, ErrInsufficientPlayers
	}
	return q.popLocked(n), nil
}

func (q *MemoryQueue) Entries(context.Context) ([]models.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out, nil
}

func (q *MemoryQueue) popLocked(n int) []models.QueueEntry {
	if n <= 0 {
		return []models.QueueEntry{}
	}

	popped := make([]models.QueueEntry, n)
	copy(popped, q.entries[:n])
	q.entries = append(q.entries[:0], q.entries[n:]...)
	for _, entry := range popped {
		delete(q.ratings, entry.PlayerID)
	}
	return popped
}

func (q *MemoryQueue) removeLocked(entry models.QueueEntry) {
	i := sort.Search(len(q.entries), func(i int) bool {
		return !less(q.entries[i], entry)
	})
	if i < len(q.entries) && q.entries[i] == entry {
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
	}
	delete(q.ratings, entry.PlayerID)
}
