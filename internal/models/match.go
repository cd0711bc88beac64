package models

import "time"

// Match 매치 (큐에서 생성된 두 팀)
type Match struct {
	MatchID   string    `json:"match_id"`
	TeamA     []string  `json:"team_a"`
	TeamB     []string  `json:"team_b"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchFormedEvent payload published on the notification bus.
type MatchFormedEvent struct {
	MatchID string   `json:"match_id"`
	TeamA   []string `json:"team_a"`
	TeamB   []string `json:"team_b"`
}

type MatchRecordKind string

const (
	MatchRecordFormed MatchRecordKind = "formed"
	MatchRecordResult MatchRecordKind = "result"
)

// MatchRecord 최근 매치 기록 항목
type MatchRecord struct {
	Kind       MatchRecordKind `json:"kind"`
	MatchID    string          `json:"match_id"`
	TeamA      []string        `json:"team_a,omitempty"`
	TeamB      []string        `json:"team_b,omitempty"`
	WinnerTeam []string        `json:"winner_team,omitempty"`
	LoserTeam  []string        `json:"loser_team,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type MatchResultRequest struct {
	WinnerTeam []string `json:"winner_team" binding:"required"`
	LoserTeam  []string `json:"loser_team" binding:"required"`
}

// PlayerUpdateFailure one failed per-player update inside a result batch.
type PlayerUpdateFailure struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
	err      error
}

func NewPlayerUpdateFailure(playerID string, err error) PlayerUpdateFailure {
	return PlayerUpdateFailure{PlayerID: playerID, Reason: err.Error(), err: err}
}

// Err returns the underlying error, if the failure was built from one.
func (f PlayerUpdateFailure) Err() error {
	return f.err
}

// MatchResultReport 결과 반영 리포트 (부분 실패 허용)
type MatchResultReport struct {
	MatchID  string                `json:"match_id"`
	Updated  []string              `json:"updated"`
	Failures []PlayerUpdateFailure `json:"failures,omitempty"`

	// AlreadyApplied players skipped because an earlier report of this match reached them.
	AlreadyApplied []string `json:"already_applied,omitempty"`
}

// Partial reports whether at least one player update failed.
func (r *MatchResultReport) Partial() bool {
	return len(r.Failures) > 0
}

type PredictRequest struct {
	TeamA []string `json:"team_a" binding:"required"`
	TeamB []string `json:"team_b" binding:"required"`
}

type Prediction struct {
	TeamAWinProb float64 `json:"team_a_win_prob"`
	TeamBWinProb float64 `json:"team_b_win_prob"`
	TeamARating  float64 `json:"team_a_rating"`
	TeamBRating  float64 `json:"team_b_rating"`
}
