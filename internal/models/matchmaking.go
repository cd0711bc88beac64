package models

// QueueEntry 매칭 큐 항목
//
// Queue order is rating ascending, ties broken by player_id ascending.
type QueueEntry struct {
	PlayerID string `json:"player_id"`
	Rating   int    `json:"mmr"`
}

// FormationStatus 매치 생성 시도 상태
type FormationStatus string

const (
	FormationIdle                FormationStatus = "idle"
	FormationDraining            FormationStatus = "draining"
	FormationFormed              FormationStatus = "formed"
	FormationInsufficientPlayers FormationStatus = "insufficient_players"
)

type JoinQueueRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Rating   *int   `json:"mmr"`
}

// JoinResult outcome of a join, including any match the join completed.
type JoinResult struct {
	PlayerID  string   `json:"player_id"`
	Rating    int      `json:"mmr"`
	QueueSize int      `json:"queue_size"`
	Matches   []*Match `json:"matches,omitempty"`
}
