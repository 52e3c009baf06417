package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

type ScoreService interface {
	RecordResult(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error)
	GetScore(ctx context.Context, playerID string) (*entity.Score, error)
}

type scoreRepo interface {
	Increment(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error)
	GetByPlayerID(ctx context.Context, playerID string) (*entity.Score, error)
}

type scoreService struct {
	scoreRepo scoreRepo
}

func NewScoreService(scoreRepo scoreRepo) ScoreService {
	return &scoreService{
		scoreRepo: scoreRepo,
	}
}

func (that *scoreService) RecordResult(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error) {
	score, err := that.scoreRepo.Increment(ctx, playerID, winner)
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	return score, nil
}

func (that *scoreService) GetScore(ctx context.Context, playerID string) (*entity.Score, error) {
	score, err := that.scoreRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return score, nil
}
