package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// ScoreRepository keeps the session tally in a Redis hash "score:<player id>".
type ScoreRepository interface {
	Increment(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error)
	GetByPlayerID(ctx context.Context, playerID string) (*entity.Score, error)
}

type dbScore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreRepository(client *redis.Client, ttl time.Duration) ScoreRepository {
	return &dbScore{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbScore) Increment(ctx context.Context, playerID string, winner entity.Mark) (*entity.Score, error) {
	key := scoreKey(playerID)

	pipe := that.client.TxPipeline()
	pipe.HIncrBy(ctx, key, entity.ScoreField(winner), 1)
	pipe.Expire(ctx, key, that.ttl)
	fields := pipe.HGetAll(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to increment score: %w", err)
	}

	score, err := parseScore(fields.Val())
	if err != nil {
		return nil, err
	}

	return score, nil
}

func (that *dbScore) GetByPlayerID(ctx context.Context, playerID string) (*entity.Score, error) {
	fields, err := that.client.HGetAll(ctx, scoreKey(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	score, err := parseScore(fields)
	if err != nil {
		return nil, err
	}

	return score, nil
}

func parseScore(fields map[string]string) (*entity.Score, error) {
	score := &entity.Score{}

	targets := map[string]*int64{
		entity.ScoreField(entity.HumanMark):    &score.Human,
		entity.ScoreField(entity.ComputerMark): &score.Computer,
		entity.ScoreField(entity.PlayerTie):    &score.Draws,
	}

	for field, target := range targets {
		raw, ok := fields[field]
		if !ok {
			continue
		}

		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse score field %s: %w", field, err)
		}
		*target = value
	}

	return score, nil
}

func scoreKey(playerID string) string {
	return "score:" + playerID
}
