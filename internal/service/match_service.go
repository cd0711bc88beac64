package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/internal/models"
	"github.com/rift-augur/rift-augur-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MatchService 매치 결과 반영 + 최근 기록
//
// Result processing is a partial-failure-tolerant batch: each player's delta
// is applied independently and failures are reported per player instead of
// rolling back the players that succeeded.
type MatchService struct {
	players     *PlayerService
	ledger      ResultLedger
	history     repository.MatchHistory
	ratingDelta int
	workers     int
	logger      *zap.Logger
}

func NewMatchService(
	players *PlayerService,
	ledger ResultLedger,
	history repository.MatchHistory,
	ratingDelta int,
	workers int,
	logger *zap.Logger,
) *MatchService {
	if workers <= 0 {
		workers = 1
	}
	return &MatchService{
		players:     players,
		ledger:      ledger,
		history:     history,
		ratingDelta: ratingDelta,
		workers:     workers,
		logger:      logger.Named("results"),
	}
}

type playerOutcome struct {
	playerID string
	applied  bool
	skipped  bool
	err      error
}

// ReportResult 승/패 반영
//
// Each player is claimed in the ledger before its delta is applied. A claim is
// released again only when the update failed with ErrBackendUnavailable, so a
// repeated report of the same match retries exactly those players and skips
// the ones already applied.
func (s *MatchService) ReportResult(ctx context.Context, matchID string, req *models.MatchResultRequest) (*models.MatchResultReport, error) {
	matchID = strings.TrimSpace(matchID)
	winners, losers, err := normalizeResult(matchID, req)
	if err != nil {
		return nil, err
	}

	winDelta := models.ProfileDelta{Wins: 1, Rating: s.ratingDelta}
	lossDelta := models.ProfileDelta{Losses: 1, Rating: -s.ratingDelta}

	outcomes := make([]playerOutcome, len(winners)+len(losers))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, playerID := range winners {
		i, playerID := i, playerID
		g.Go(func() error {
			outcomes[i] = s.applyOnce(ctx, matchID, playerID, winDelta)
			return nil
		})
	}
	for i, playerID := range losers {
		i, playerID := len(winners)+i, playerID
		g.Go(func() error {
			outcomes[i] = s.applyOnce(ctx, matchID, playerID, lossDelta)
			return nil
		})
	}
	_ = g.Wait()

	report := &models.MatchResultReport{
		MatchID: matchID,
		Updated: make([]string, 0, len(outcomes)),
	}
	attempted, unavailable := 0, 0
	for _, outcome := range outcomes {
		switch {
		case outcome.skipped:
			report.AlreadyApplied = append(report.AlreadyApplied, outcome.playerID)
			continue
		case outcome.applied:
			report.Updated = append(report.Updated, outcome.playerID)
			metrics.ResultUpdates.WithLabelValues(metrics.OutcomeUpdated).Inc()
		case errors.Is(outcome.err, repository.ErrNotFound):
			report.Failures = append(report.Failures, models.NewPlayerUpdateFailure(outcome.playerID, outcome.err))
			metrics.ResultUpdates.WithLabelValues(metrics.OutcomeNotFound).Inc()
		default:
			report.Failures = append(report.Failures, models.NewPlayerUpdateFailure(outcome.playerID, outcome.err))
			metrics.ResultUpdates.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			unavailable++
		}
		attempted++
	}

	if attempted == 0 {
		return nil, ErrResultAlreadyReported
	}
	// 반영된 것이 하나도 없는 저장소 장애는 에러로 돌려준다 (claim은 이미 해제됨)
	if unavailable == attempted {
		return nil, fmt.Errorf("report match %s: %w", matchID, repository.ErrBackendUnavailable)
	}

	if report.Partial() {
		metrics.PartialBatches.Inc()
		s.logger.Warn("Match result partially applied",
			zap.String("match_id", matchID),
			zap.Int("updated", len(report.Updated)),
			zap.Int("failed", len(report.Failures)),
			zap.Any("failures", report.Failures))
	}

	// 재시도 보고는 기록을 다시 남기지 않는다
	if len(report.AlreadyApplied) == 0 {
		record := models.MatchRecord{
			Kind:       models.MatchRecordResult,
			MatchID:    matchID,
			WinnerTeam: winners,
			LoserTeam:  losers,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.history.Append(ctx, record); err != nil {
			s.logger.Error("Failed to record match result", zap.String("match_id", matchID), zap.Error(err))
		}
	}

	s.logger.Info("Match result reported",
		zap.String("match_id", matchID),
		zap.Strings("winner_team", winners),
		zap.Strings("loser_team", losers),
		zap.Strings("already_applied", report.AlreadyApplied))

	return report, nil
}

// applyOnce ledger claim 후 반영, 저장소 장애면 claim을 풀어 재시도를 허용
func (s *MatchService) applyOnce(ctx context.Context, matchID, playerID string, delta models.ProfileDelta) playerOutcome {
	token, err := s.ledger.Claim(ctx, matchID, playerID)
	if errors.Is(err, ErrResultAlreadyReported) {
		return playerOutcome{playerID: playerID, skipped: true}
	}
	if err != nil {
		return playerOutcome{playerID: playerID, err: err}
	}

	_, err = s.players.ApplyResult(ctx, playerID, delta)
	if err == nil {
		return playerOutcome{playerID: playerID, applied: true}
	}

	if !errors.Is(err, repository.ErrNotFound) {
		if releaseErr := s.ledger.Release(ctx, matchID, playerID, token); releaseErr != nil {
			s.logger.Error("Failed to release result claim",
				zap.String("match_id", matchID),
				zap.String("player_id", playerID),
				zap.Error(releaseErr))
		}
	}
	return playerOutcome{playerID: playerID, err: err}
}

// RecentMatches 최근 매치 기록 (최신순)
func (s *MatchService) RecentMatches(ctx context.Context) ([]models.MatchRecord, error) {
	return s.history.Recent(ctx)
}

// normalizeResult 공백 제거 후 검증 (중복 검사도 정규화된 id 기준)
func normalizeResult(matchID string, req *models.MatchResultRequest) (winners, losers []string, err error) {
	if matchID == "" {
		return nil, nil, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if len(req.WinnerTeam) == 0 || len(req.LoserTeam) == 0 {
		return nil, nil, fmt.Errorf("%w: winner_team and loser_team must be non-empty", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(req.WinnerTeam)+len(req.LoserTeam))
	normalize := func(team []string) ([]string, error) {
		out := make([]string, 0, len(team))
		for _, raw := range team {
			playerID, err := normalizeID(raw)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[playerID]; dup {
				return nil, fmt.Errorf("%w: player %s listed more than once", ErrInvalidInput, playerID)
			}
			seen[playerID] = struct{}{}
			out = append(out, playerID)
		}
		return out, nil
	}

	if winners, err = normalize(req.WinnerTeam); err != nil {
		return nil, nil, err
	}
	if losers, err = normalize(req.LoserTeam); err != nil {
		return nil, nil, err
	}
	return winners, losers, nil
}
