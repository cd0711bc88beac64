package service

import (
	"context"
	"sync"
	"time"

	"github.com/rift-augur/rift-augur-backend/internal/cache"
	"github.com/rift-augur/rift-augur-backend/internal/matchmaking"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"go.uber.org/zap"
)

// flakyRepository 특정 플레이어에 대해 저장소 장애를 흉내낸다
type flakyRepository struct {
	repository.ProfileRepository

	mu     sync.Mutex
	broken map[string]bool
}

func newFlakyRepository(inner repository.ProfileRepository) *flakyRepository {
	return &flakyRepository{ProfileRepository: inner, broken: make(map[string]bool)}
}

func (r *flakyRepository) breakPlayer(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.broken[id] = true
	}
}

func (r *flakyRepository) heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = make(map[string]bool)
}

func (r *flakyRepository) isBroken(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broken[id]
}

func (r *flakyRepository) ApplyDelta(ctx context.Context, id string, delta models.ProfileDelta) (*models.PlayerProfile, error) {
	if r.isBroken(id) {
		return nil, repository.ErrBackendUnavailable
	}
	return r.ProfileRepository.ApplyDelta(ctx, id, delta)
}

func (r *flakyRepository) Get(ctx context.Context, id string) (*models.PlayerProfile, error) {
	if r.isBroken(id) {
		return nil, repository.ErrBackendUnavailable
	}
	return r.ProfileRepository.Get(ctx, id)
}

type testEnv struct {
	repo        *flakyRepository
	cache       *cache.MemoryProfileCache
	queue       *matchmaking.MemoryQueue
	bus         *notification.Broker
	history     *repository.MemoryMatchHistory
	ledger      *MemoryResultLedger
	players     *PlayerService
	rating      *RatingService
	matchmaking *MatchmakingService
	matches     *MatchService
}

func newTestEnv(matchSize int) *testEnv {
	logger := zap.NewNop()
	env := &testEnv{
		repo:    newFlakyRepository(repository.NewMemoryProfileRepository()),
		cache:   cache.NewMemoryProfileCache(),
		queue:   matchmaking.NewMemoryQueue(),
		bus:     notification.NewBroker(logger),
		history: repository.NewMemoryMatchHistory(repository.DefaultHistoryLimit),
		ledger:  NewMemoryResultLedger(DefaultLedgerTTL),
	}
	env.players = NewPlayerService(env.repo, env.cache, 5*time.Minute, models.DefaultRating, logger)
	env.rating = NewRatingService(env.players, 0.1, models.DefaultRating, logger)
	env.matchmaking = NewMatchmakingService(env.queue, env.players, env.bus, env.history, matchSize, time.Hour, logger)
	env.matches = NewMatchService(env.players, env.ledger, env.history, 25, 4, logger)
	return env
}

func intPtr(v int) *int {
	return &v
}
