package models

import "time"

const (
	DefaultRating    = 1000
	DefaultCharacter = "DefaultChar"
)

// PlayerProfile 플레이어 프로필 (레이팅 + 전적)
type PlayerProfile struct {
	PlayerID             string    `json:"player_id" db:"player_id"`
	Rating               int       `json:"mmr" db:"rating"`
	Wins                 int       `json:"wins" db:"wins"`
	Losses               int       `json:"losses" db:"losses"`
	CharacterPreferences []string  `json:"character_preferences" db:"character_preferences"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// NewPlayerProfile returns a fresh profile with default counters.
func NewPlayerProfile(playerID string, rating int) *PlayerProfile {
	now := time.Now().UTC()
	return &PlayerProfile{
		PlayerID:             playerID,
		Rating:               rating,
		CharacterPreferences: []string{DefaultCharacter},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Clone deep-copies the profile so callers never share the preferences slice.
func (p *PlayerProfile) Clone() *PlayerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.CharacterPreferences = append([]string(nil), p.CharacterPreferences...)
	return &c
}

// ProfileDelta 원자적 증감 (rating, wins, losses)
type ProfileDelta struct {
	Rating int `json:"rating"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// ProfileUpdate conditional update payload; nil fields are left untouched.
type ProfileUpdate struct {
	Rating               *int     `json:"mmr"`
	CharacterPreferences []string `json:"character_preferences"`
}

// IsEmpty reports whether the update would change nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Rating == nil && u.CharacterPreferences == nil
}

type CreatePlayerRequest struct {
	PlayerID             string   `json:"player_id" binding:"required"`
	Rating               *int     `json:"mmr"`
	CharacterPreferences []string `json:"character_preferences"`
}

type UpdatePlayerRequest struct {
	PlayerID             string   `json:"player_id" binding:"required"`
	Rating               *int     `json:"mmr"`
	CharacterPreferences []string `json:"character_preferences"`
}
