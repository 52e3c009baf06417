package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	RenamePlayer(ctx context.Context, playerID, name string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	NewGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error)
	BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error)

	GetScore(ctx context.Context, playerID string) (*entity.Score, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
	RenamePlayer(ctx context.Context, id, name string) (*entity.Player, error)
}

type gamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error)
	NewGame(ctx context.Context, player *entity.Player) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error)
	BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error)
}

type scoreService interface {
	GetScore(ctx context.Context, playerID string) (*entity.Score, error)
}

type narrator interface {
	Commentate(ctx context.Context, player *entity.Player, game *entity.Game, cell int)
	Announce(ctx context.Context, player *entity.Player, event entity.GameEvent)
}

type gameUseCase struct {
	logger *slog.Logger

	playerService   playerService
	gamePlayService gamePlayService
	scoreService    scoreService
	narrator        narrator
}

func NewGameUseCase(logger *slog.Logger, playerService playerService, gamePlayService gamePlayService, scoreService scoreService, narrator narrator) GameUseCase {
	return &gameUseCase{
		logger:          logger,
		playerService:   playerService,
		gamePlayService: gamePlayService,
		scoreService:    scoreService,
		narrator:        narrator,
	}
}

// GetOrCreatePlayer resumes the session of playerID. An empty or expired ID starts a new player.
func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID != "" {
		player, err := that.playerService.GetPlayerByID(ctx, playerID)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}

		that.logger.Info("player session expired", "playerID", playerID)
	}

	player, err := that.playerService.CreatePlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create player: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) RenamePlayer(ctx context.Context, playerID, name string) (*entity.Player, error) {
	player, err := that.playerService.RenamePlayer(ctx, playerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to rename player: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return game, nil
}

// NewGame resets the board; the tally survives.
func (that *gameUseCase) NewGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.NewGame(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to start new game: %w", err)
	}

	return game, nil
}

// MakeTurn places the human mark. A rejected move still returns the current game in the result.
func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, cell int) (*service.TurnResult, error) {
	result, err := that.gamePlayService.MakeTurn(ctx, playerID, cell)
	if err != nil {
		return result, fmt.Errorf("failed to make turn: %w", err)
	}

	if result.Game.IsFinished() {
		that.narrator.Announce(ctx, result.Player, entity.FinishEvent(result.Game.Winner))
	}

	return result, nil
}

// BotTurn plays the computer's reply, then asks for a remark and a spoken cue.
func (that *gameUseCase) BotTurn(ctx context.Context, playerID string) (*service.TurnResult, error) {
	result, err := that.gamePlayService.BotTurn(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to make bot turn: %w", err)
	}

	that.narrator.Commentate(ctx, result.Player, result.Game, result.Cell)

	event := entity.EventMove
	if result.Game.IsFinished() {
		event = entity.FinishEvent(result.Game.Winner)
	}
	that.narrator.Announce(ctx, result.Player, event)

	return result, nil
}

func (that *gameUseCase) GetScore(ctx context.Context, playerID string) (*entity.Score, error) {
	score, err := that.scoreService.GetScore(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return score, nil
}
