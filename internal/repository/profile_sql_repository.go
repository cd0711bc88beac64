package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/pkg/database"
)

const profileColumns = `player_id, rating, wins, losses, character_preferences, created_at, updated_at`

// SQLProfileRepository postgres/sqlite 기반 프로필 저장소
// The queries use only syntax both engines accept ($n placeholders, ON CONFLICT, RETURNING).
// sqlite binds $n in order of first appearance, so placeholders always appear as $1, $2, ...
type SQLProfileRepository struct {
	db *database.DB
}

func NewSQLProfileRepository(db *database.DB) *SQLProfileRepository {
	return &SQLProfileRepository{db: db}
}

// CreateIfAbsent 프로필 생성 (존재하면 ErrAlreadyExists)
func (r *SQLProfileRepository) CreateIfAbsent(ctx context.Context, profile *models.PlayerProfile) error {
	prefs, err := encodePreferences(profile.CharacterPreferences)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO player_profiles (player_id, rating, wins, losses, character_preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.PlayerID,
		profile.Rating,
		profile.Wins,
		profile.Losses,
		prefs,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return unavailable("create profile", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return unavailable("create profile", err)
	}
	if rows == 0 {
		return ErrAlreadyExists
	}

	return nil
}

// UpdateIfPresent 프로필 조건부 업데이트
func (r *SQLProfileRepository) UpdateIfPresent(ctx context.Context, playerID string, update models.ProfileUpdate) (*models.PlayerProfile, error) {
	var rating, prefs interface{}
	if update.Rating != nil {
		rating = *update.Rating
	}
	if update.CharacterPreferences != nil {
		encoded, err := encodePreferences(update.CharacterPreferences)
		if err != nil {
			return nil, err
		}
		prefs = encoded
	}

	query := `
		UPDATE player_profiles
		SET rating = COALESCE($1, rating),
		    character_preferences = COALESCE($2, character_preferences),
		    updated_at = CURRENT_TIMESTAMP
		WHERE player_id = $3
		RETURNING ` + profileColumns

	return r.queryOne(ctx, "update profile", query, rating, prefs, playerID)
}

// ApplyDelta 원자적 증감 (read-modify-write 없이 한 문장으로)
func (r *SQLProfileRepository) ApplyDelta(ctx context.Context, playerID string, delta models.ProfileDelta) (*models.PlayerProfile, error) {
	query := `
		UPDATE player_profiles
		SET rating = rating + $1,
		    wins = wins + $2,
		    losses = losses + $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE player_id = $4
		RETURNING ` + profileColumns

	return r.queryOne(ctx, "apply delta", query, delta.Rating, delta.Wins, delta.Losses, playerID)
}

// Get 프로필 조회
func (r *SQLProfileRepository) Get(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM player_profiles WHERE player_id = $1`
	return r.queryOne(ctx, "get profile", query, playerID)
}

// Scan 전체 또는 prefix 조회
func (r *SQLProfileRepository) Scan(ctx context.Context, prefix string) ([]*models.PlayerProfile, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+profileColumns+` FROM player_profiles ORDER BY player_id`)
	} else {
		// substr keeps the match case-sensitive on both engines, unlike sqlite LIKE
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+profileColumns+` FROM player_profiles
			 WHERE substr(player_id, 1, $1) = $2
			 ORDER BY player_id`,
			utf8.RuneCountInString(prefix), prefix)
	}
	if err != nil {
		return nil, unavailable("scan profiles", err)
	}
	defer rows.Close()

	profiles := []*models.PlayerProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, unavailable("scan profiles", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("scan profiles", err)
	}

	return profiles, nil
}

func (r *SQLProfileRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping database", err)
	}
	return nil
}

func (r *SQLProfileRepository) queryOne(ctx context.Context, op, query string, args ...interface{}) (*models.PlayerProfile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(op, err)
	}
	return profile, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.PlayerProfile, error) {
	profile := &models.PlayerProfile{}
	var (
		prefs              string
		createdAt, updated sqlTime
	)
	if err := row.Scan(
		&profile.PlayerID,
		&profile.Rating,
		&profile.Wins,
		&profile.Losses,
		&prefs,
		&createdAt,
		&updated,
	); err != nil {
		return nil, err
	}
	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updated.Time
	if err := json.Unmarshal([]byte(prefs), &profile.CharacterPreferences); err != nil {
		return nil, fmt.Errorf("failed to decode character preferences: %w", err)
	}
	return profile, nil
}

// sqlTime sqlite는 RETURNING 결과의 timestamp를 문자열로 돌려줄 수 있다
type sqlTime struct {
	time.Time
}

var sqlTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (t *sqlTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (t *sqlTime) parse(value string) error {
	for _, layout := range sqlTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", value)
}

func encodePreferences(prefs []string) (string, error) {
	if prefs == nil {
		prefs = []string{models.DefaultCharacter}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("failed to encode character preferences: %w", err)
	}
	return string(data), nil
}
