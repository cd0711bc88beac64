package repository

import (
	"context"

	"github.com/rift-augur/rift-augur-backend/internal/models"
)

// ProfileRepository 플레이어 프로필 저장소
//
// Every mutating method is a single atomic conditional write on the backend.
type ProfileRepository interface {
	// CreateIfAbsent persists the profile, or returns ErrAlreadyExists.
	CreateIfAbsent(ctx context.Context, profile *models.PlayerProfile) error
	// UpdateIfPresent applies update, or returns ErrNotFound.
	UpdateIfPresent(ctx context.Context, playerID string, update models.ProfileUpdate) (*models.PlayerProfile, error)
	// ApplyDelta atomically adds delta to the counters, or returns ErrNotFound.
	ApplyDelta(ctx context.Context, playerID string, delta models.ProfileDelta) (*models.PlayerProfile, error)
	Get(ctx context.Context, playerID string) (*models.PlayerProfile, error)
	// Scan lists every profile whose id starts with prefix ("" lists all).
	Scan(ctx context.Context, prefix string) ([]*models.PlayerProfile, error)
	Ping(ctx context.Context) error
}
