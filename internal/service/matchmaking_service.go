package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rift-augur/rift-augur-backend/internal/matchmaking"
	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/notification"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"go.uber.org/zap"
)

// MatchmakingService 큐 진입/이탈 + 매치 생성
//
// A match is formed by popping exactly matchSize players in one atomic queue
// operation. When another attempt won the race the pop removes nobody, so a
// player can never be drawn into two matches.
type MatchmakingService struct {
	queue     matchmaking.Queue
	players   *PlayerService
	bus       notification.Bus
	history   repository.MatchHistory
	matchSize int
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

func NewMatchmakingService(
	queue matchmaking.Queue,
	players *PlayerService,
	bus notification.Bus,
	history repository.MatchHistory,
	matchSize int,
	interval time.Duration,
	logger *zap.Logger,
) *MatchmakingService {
	return &MatchmakingService{
		queue:     queue,
		players:   players,
		bus:       bus,
		history:   history,
		matchSize: matchSize,
		interval:  interval,
		logger:    logger.Named("matchmaking"),
		stopChan:  make(chan struct{}),
	}
}

// Join 큐 진입 (프로필 upsert 후 매치 생성 시도)
func (s *MatchmakingService) Join(ctx context.Context, req *models.JoinQueueRequest) (*models.JoinResult, error) {
	playerID, err := normalizeID(req.PlayerID)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil && *req.Rating < 0 {
		return nil, fmt.Errorf("%w: mmr must be non-negative", ErrInvalidInput)
	}

	profile, err := s.players.EnsureForQueue(ctx, playerID, req.Rating)
	if err != nil {
		return nil, err
	}

	if err := s.queue.Join(ctx, playerID, profile.Rating); err != nil {
		return nil, err
	}
	metrics.QueueJoins.Inc()

	s.logger.Debug("Player joined queue",
		zap.String("player_id", playerID),
		zap.Int("rating", profile.Rating))

	matches, err := s.FormMatches(ctx)
	if err != nil {
		return nil, err
	}

	size, err := s.queue.Size(ctx)
	if err != nil {
		return nil, err
	}

	return &models.JoinResult{
		PlayerID:  playerID,
		Rating:    profile.Rating,
		QueueSize: size,
		Matches:   matches,
	}, nil
}

// Leave 큐 이탈 (멱등)
func (s *MatchmakingService) Leave(ctx context.Context, playerID string) error {
	playerID, err := normalizeID(playerID)
	if err != nil {
		return err
	}
	if err := s.queue.Leave(ctx, playerID); err != nil {
		return err
	}
	metrics.QueueLeaves.Inc()
	return nil
}

// Entries 대기 중인 플레이어 (레이팅 순)
func (s *MatchmakingService) Entries(ctx context.Context) ([]models.QueueEntry, error) {
	return s.queue.Entries(ctx)
}

// Size 큐 크기
func (s *MatchmakingService) Size(ctx context.Context) (int, error) {
	return s.queue.Size(ctx)
}

// TryFormMatch 한 번의 매치 생성 시도
// Idle → Draining → {Formed, InsufficientPlayers}
func (s *MatchmakingService) TryFormMatch(ctx context.Context) (*models.Match, models.FormationStatus, error) {
	size, err := s.queue.Size(ctx)
	if err != nil {
		return nil, models.FormationIdle, err
	}
	if size < s.matchSize {
		return nil, models.FormationIdle, nil
	}

	// Draining
	entries, err := s.queue.PopExactly(ctx, s.matchSize)
	if errors.Is(err, matchmaking.ErrInsufficientPlayers) {
		metrics.FormationRaces.Inc()
		s.logger.Debug("Formation raced, queue drained by another attempt")
		return nil, models.FormationInsufficientPlayers, nil
	}
	if err != nil {
		return nil, models.FormationDraining, err
	}

	teamA, teamB := matchmaking.SplitTeams(entries)
	match := &models.Match{
		MatchID:   uuid.New().String(),
		TeamA:     teamA,
		TeamB:     teamB,
		CreatedAt: time.Now().UTC(),
	}
	metrics.MatchesFormed.Inc()

	s.logger.Info("Match formed",
		zap.String("match_id", match.MatchID),
		zap.Strings("team_a", match.TeamA),
		zap.Strings("team_b", match.TeamB))

	// 매치는 이미 확정됨: 알림/기록 실패는 로그만 남긴다
	s.announce(ctx, match)

	return match, models.FormationFormed, nil
}

// FormMatches 더 이상 만들 수 없을 때까지 매치 생성
func (s *MatchmakingService) FormMatches(ctx context.Context) ([]*models.Match, error) {
	var matches []*models.Match
	for {
		match, status, err := s.TryFormMatch(ctx)
		if err != nil {
			return matches, err
		}
		if status != models.FormationFormed {
			return matches, nil
		}
		matches = append(matches, match)
	}
}

func (s *MatchmakingService) announce(ctx context.Context, match *models.Match) {
	payload, err := json.Marshal(models.MatchFormedEvent{
		MatchID: match.MatchID,
		TeamA:   match.TeamA,
		TeamB:   match.TeamB,
	})
	if err == nil {
		err = s.bus.Publish(ctx, notification.TopicMatches, payload)
	}
	if err != nil {
		s.logger.Error("Failed to publish match", zap.String("match_id", match.MatchID), zap.Error(err))
	}

	record := models.MatchRecord{
		Kind:      models.MatchRecordFormed,
		MatchID:   match.MatchID,
		TeamA:     match.TeamA,
		TeamB:     match.TeamB,
		Timestamp: match.CreatedAt,
	}
	if err := s.history.Append(ctx, record); err != nil {
		s.logger.Error("Failed to record match", zap.String("match_id", match.MatchID), zap.Error(err))
	}
}

// Start 주기적 매치 생성 시작
func (s *MatchmakingService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Starting MatchmakingService", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.matchmakingLoop()
}

// Stop 주기적 매치 생성 중지
func (s *MatchmakingService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping MatchmakingService")
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("MatchmakingService stopped")
}

func (s *MatchmakingService) matchmakingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *MatchmakingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	matches, err := s.FormMatches(ctx)
	if err != nil {
		s.logger.Error("Matchmaking sweep failed", zap.Error(err))
		return
	}
	if len(matches) > 0 {
		s.logger.Info("Matchmaking sweep completed", zap.Int("matches_created", len(matches)))
	}
}
