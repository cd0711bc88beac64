package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rift-augur/rift-augur-backend/internal/models"
	"go.uber.org/zap"
)

// RatingService 팀 레이팅 / 승률 예측
type RatingService struct {
	players       *PlayerService
	steepness     float64 // k: 레이팅 차이에 대한 민감도
	defaultRating int
	logger        *zap.Logger
}

func NewRatingService(players *PlayerService, steepness float64, defaultRating int, logger *zap.Logger) *RatingService {
	return &RatingService{
		players:       players,
		steepness:     steepness,
		defaultRating: defaultRating,
		logger:        logger.Named("rating"),
	}
}

// Predict 두 레이팅 간 승률 (logistic, base 10)
// probA + probB == 1, Predict(r, r) == (0.5, 0.5)
func (s *RatingService) Predict(ratingA, ratingB float64) (probA, probB float64) {
	probA = 1.0 / (1.0 + math.Pow(10, -s.steepness*(ratingA-ratingB)))
	return probA, 1.0 - probA
}

// TeamRating 팀원 레이팅 평균
// 조회 실패한 플레이어는 기본 레이팅으로 계산한다.
func (s *RatingService) TeamRating(ctx context.Context, team []string) float64 {
	if len(team) == 0 {
		return 0
	}

	total := 0
	for _, playerID := range team {
		total += s.resolveRating(ctx, playerID)
	}
	return float64(total) / float64(len(team))
}

// PredictMatch 두 팀의 승률 예측
func (s *RatingService) PredictMatch(ctx context.Context, teamA, teamB []string) (*models.Prediction, error) {
	if len(teamA) == 0 || len(teamB) == 0 {
		return nil, fmt.Errorf("%w: both teams must be non-empty", ErrInvalidInput)
	}

	ratingA := s.TeamRating(ctx, teamA)
	ratingB := s.TeamRating(ctx, teamB)
	probA, probB := s.Predict(ratingA, ratingB)

	return &models.Prediction{
		TeamAWinProb: probA,
		TeamBWinProb: probB,
		TeamARating:  ratingA,
		TeamBRating:  ratingB,
	}, nil
}

func (s *RatingService) resolveRating(ctx context.Context, playerID string) int {
	profile, err := s.players.Resolve(ctx, playerID)
	if err != nil {
		s.logger.Warn("Falling back to default rating",
			zap.String("player_id", playerID),
			zap.Int("default_rating", s.defaultRating),
			zap.Error(err))
		return s.defaultRating
	}
	return profile.Rating
}
