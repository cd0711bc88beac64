package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rift-augur/rift-augur-backend/internal/models"
)

// MemoryProfileRepository in-memory 프로필 저장소 (개발/테스트용)
// One mutex covers every check-and-write, which is what makes the conditional
// operations atomic.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*models.PlayerProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[string]*models.PlayerProfile),
	}
}

func (r *MemoryProfileRepository) CreateIfAbsent(_ context.Context, profile *models.PlayerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.PlayerID]; exists {
		return ErrAlreadyExists
	}

	stored := profile.Clone()
	if stored.CharacterPreferences == nil {
		stored.CharacterPreferences = []string{models.DefaultCharacter}
	}
	r.profiles[profile.PlayerID] = stored
	return nil
}

func (r *MemoryProfileRepository) UpdateIfPresent(_ context.Context, playerID string, update models.ProfileUpdate) (*models.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.profiles[playerID]
	if !exists {
		return nil, ErrNotFound
	}

	if update.Rating != nil {
		profile.Rating = *update.Rating
	}
	if update.CharacterPreferences != nil {
		profile.CharacterPreferences = append([]string(nil), update.CharacterPreferences...)
	}
	profile.UpdatedAt = time.Now().UTC()

	return profile.Clone(), nil
}

func (r *MemoryProfileRepository) ApplyDelta(_ context.Context, playerID string, delta models.ProfileDelta) (*models.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.profiles[playerID]
	if !exists {
		return nil, ErrNotFound
	}

	profile.Rating += delta.Rating
	profile.Wins += delta.Wins
	profile.Losses += delta.Losses
	profile.UpdatedAt = time.Now().UTC()

	return profile.Clone(), nil
}

func (r *MemoryProfileRepository) Get(_ context.Context, playerID string) (*models.PlayerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[playerID]
	if !exists {
		return nil, ErrNotFound
	}
	return profile.Clone(), nil
}

func (r *MemoryProfileRepository) Scan(_ context.Context, prefix string) ([]*models.PlayerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := []*models.PlayerProfile{}
	for id, profile := range r.profiles {
		if strings.HasPrefix(id, prefix) {
			profiles = append(profiles, profile.Clone())
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].PlayerID < profiles[j].PlayerID
	})
	return profiles, nil
}

func (r *MemoryProfileRepository) Ping(context.Context) error {
	return nil
}
