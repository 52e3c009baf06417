package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

type GameService interface {
	CreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error)
	ModifyGame(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

// CreateGame stores a fresh board for player and points the player at it; saving the player is up to the caller.
func (that *gameService) CreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game := entity.NewGame(uuid.NewString(), player.ID)

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game from storage: %w", err)
	}

	player.GameID = game.ID

	return game, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}
	return game, nil
}

// ModifyGame applies change to the stored game atomically. A game that change rejected is returned with the error.
func (that *gameService) ModifyGame(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	game, err := that.gameRepo.Update(ctx, id, change)
	if err != nil {
		return game, fmt.Errorf("failed to update game: %w", err)
	}
	return game, nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}
