package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rift-augur/rift-augur-backend/internal/cache"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PlayerService 프로필 생성/수정/조회
//
// Reads go through the cache first. Every mutation invalidates the cache
// entry after the repository write; a read-through fill racing a mutation
// can re-insert an older snapshot for at most one TTL.
type PlayerService struct {
	repo          repository.ProfileRepository
	cache         cache.ProfileCache
	cacheTTL      time.Duration
	defaultRating int
	fills         singleflight.Group
	logger        *zap.Logger
}

func NewPlayerService(
	repo repository.ProfileRepository,
	profileCache cache.ProfileCache,
	cacheTTL time.Duration,
	defaultRating int,
	logger *zap.Logger,
) *PlayerService {
	return &PlayerService{
		repo:          repo,
		cache:         profileCache,
		cacheTTL:      cacheTTL,
		defaultRating: defaultRating,
		logger:        logger.Named("players"),
	}
}

// Create 새 프로필 생성 (이미 있으면 repository.ErrAlreadyExists)
func (s *PlayerService) Create(ctx context.Context, req *models.CreatePlayerRequest) (*models.PlayerProfile, error) {
	playerID, err := normalizeID(req.PlayerID)
	if err != nil {
		return nil, err
	}

	rating := s.defaultRating
	if req.Rating != nil {
		rating = *req.Rating
	}

	profile := models.NewPlayerProfile(playerID, rating)
	if len(req.CharacterPreferences) > 0 {
		profile.CharacterPreferences = append([]string(nil), req.CharacterPreferences...)
	}

	if err := s.repo.CreateIfAbsent(ctx, profile); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, playerID)

	s.logger.Info("Player created", zap.String("player_id", playerID), zap.Int("rating", rating))
	return profile, nil
}

// Update 기존 프로필 수정 (없으면 repository.ErrNotFound)
func (s *PlayerService) Update(ctx context.Context, req *models.UpdatePlayerRequest) (*models.PlayerProfile, error) {
	playerID, err := normalizeID(req.PlayerID)
	if err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{
		Rating:               req.Rating,
		CharacterPreferences: req.CharacterPreferences,
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	profile, err := s.repo.UpdateIfPresent(ctx, playerID, update)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, playerID)

	return profile, nil
}

// Resolve 캐시 → 저장소 순 조회 (생성하지 않음)
func (s *PlayerService) Resolve(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	if profile, ok := s.cache.Get(ctx, playerID); ok {
		return profile, nil
	}

	// 같은 플레이어에 대한 동시 miss는 저장소 조회 한 번으로 합친다
	v, err, _ := s.fills.Do(playerID, func() (interface{}, error) {
		profile, err := s.repo.Get(ctx, playerID)
		if err != nil {
			return nil, err
		}
		s.cache.Put(ctx, profile, s.cacheTTL)
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.PlayerProfile).Clone(), nil
}

// GetStats 프로필 조회, 없으면 기본값으로 생성
func (s *PlayerService) GetStats(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	playerID, err := normalizeID(playerID)
	if err != nil {
		return nil, err
	}
	return s.resolveOrCreate(ctx, playerID, s.defaultRating)
}

// List 전체 또는 prefix로 조회
func (s *PlayerService) List(ctx context.Context, prefix string) ([]*models.PlayerProfile, error) {
	return s.repo.Scan(ctx, prefix)
}

// EnsureForQueue 큐 진입 시 upsert
// rating이 주어지면 기존 프로필의 레이팅을 덮어쓰고, 없으면 저장된 값을 쓴다.
func (s *PlayerService) EnsureForQueue(ctx context.Context, playerID string, rating *int) (*models.PlayerProfile, error) {
	if rating == nil {
		return s.resolveOrCreate(ctx, playerID, s.defaultRating)
	}

	profile := models.NewPlayerProfile(playerID, *rating)
	err := s.repo.CreateIfAbsent(ctx, profile)
	if err == nil {
		s.cache.Invalidate(ctx, playerID)
		return profile, nil
	}
	if !errors.Is(err, repository.ErrAlreadyExists) {
		return nil, err
	}

	updated, err := s.repo.UpdateIfPresent(ctx, playerID, models.ProfileUpdate{Rating: rating})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, playerID)
	return updated, nil
}

// ApplyResult 전적/레이팅 원자적 반영 후 캐시 무효화
func (s *PlayerService) ApplyResult(ctx context.Context, playerID string, delta models.ProfileDelta) (*models.PlayerProfile, error) {
	// 실패한 경우에도 쓰기가 반영됐을 수 있으므로 항상 무효화
	defer s.cache.Invalidate(ctx, playerID)

	return s.repo.ApplyDelta(ctx, playerID, delta)
}

// Ping 저장소 상태 확인
func (s *PlayerService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *PlayerService) resolveOrCreate(ctx context.Context, playerID string, rating int) (*models.PlayerProfile, error) {
	profile, err := s.Resolve(ctx, playerID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	profile = models.NewPlayerProfile(playerID, rating)
	err = s.repo.CreateIfAbsent(ctx, profile)
	switch {
	case err == nil:
		s.logger.Debug("Player created lazily", zap.String("player_id", playerID))
		return profile, nil
	case errors.Is(err, repository.ErrAlreadyExists):
		// 동시에 다른 요청이 먼저 생성함
		return s.repo.Get(ctx, playerID)
	default:
		return nil, err
	}
}

func normalizeID(playerID string) (string, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return "", fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	return playerID, nil
}
