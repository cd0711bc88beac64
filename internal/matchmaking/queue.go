package matchmaking

import (
	"context"
	"errors"

	"github.com/rift-augur/rift-augur-backend/internal/models"
)

// ErrInsufficientPlayers 큐에 요청한 인원이 없음 (정상 흐름)
var ErrInsufficientPlayers = errors.New("insufficient players in queue")

// Queue 레이팅 순 매칭 큐
//
// Order is rating ascending, ties broken by player_id ascending (byte-wise).
// A player appears at most once; Join on a queued player re-scores in place.
// Pops remove and return entries in one atomic step, so two callers never
// receive the same player.
type Queue interface {
	Join(ctx context.Context, playerID string, rating int) error
	Leave(ctx context.Context, playerID string) error
	Size(ctx context.Context) (int, error)
	// PopFront removes up to n entries from the front.
	PopFront(ctx context.Context, n int) ([]models.QueueEntry, error)
	// PopExactly removes exactly n entries or returns ErrInsufficientPlayers
	// without removing anything.
	PopExactly(ctx context.Context, n int) ([]models.QueueEntry, error)
	Entries(ctx context.Context) ([]models.QueueEntry, error)
}

// SplitTeams 레이팅 순 슬라이스를 앞/뒤 절반으로 나눈다
func SplitTeams(entries []models.QueueEntry) (teamA, teamB []string) {
	half := len(entries) / 2
	teamA = make([]string, 0, half)
	teamB = make([]string, 0, len(entries)-half)
	for i, entry := range entries {
		if i < half {
			teamA = append(teamA, entry.PlayerID)
		} else {
			teamB = append(teamB, entry.PlayerID)
		}
	}
	return teamA, teamB
}

func less(a, b models.QueueEntry) bool {
	if a.Rating != b.Rating {
		return a.Rating < b.Rating
	}
	return a.PlayerID < b.PlayerID
}
