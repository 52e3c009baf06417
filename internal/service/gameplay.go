package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

// TurnResult is the state after one placement. Score is set only when that placement finished the game.
type TurnResult struct {
	Player *entity.Player
	Game   *entity.Game
	Cell   int
	Score  *entity.Score
}

type GamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error)
	NewGame(ctx context.Context, player *entity.Player) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*TurnResult, error)
	BotTurn(ctx context.Context, playerID string) (*TurnResult, error)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	scoreService  ScoreService
	botService    BotService
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, scoreService ScoreService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		scoreService:  scoreService,
		botService:    botService,
	}
}

// MakeTurn places the human mark. The game is loaded, changed and saved as one step, so a turn racing
// another request for the same game is refused instead of overwriting it.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, cell int) (*TurnResult, error) {
	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	game, err := that.gameService.ModifyGame(ctx, player.GameID, func(game *entity.Game) error {
		return tictactoe.MakeTurn(game, entity.HumanMark, cell)
	})
	if err != nil {
		var result *TurnResult
		if game != nil {
			result = &TurnResult{Player: player, Game: game, Cell: cell}
		}

		return result, fmt.Errorf("failed to make turn: %w", lostRace(err, apperror.ErrNotYourTurn))
	}

	return that.finishTurn(ctx, player, game, cell)
}

func (that *gamePlayService) BotTurn(ctx context.Context, playerID string) (*TurnResult, error) {
	player, err := that.currentPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var cell int
	game, err := that.gameService.ModifyGame(ctx, player.GameID, func(game *entity.Game) error {
		var turnErr error
		cell, turnErr = that.botService.MakeTurn(game)
		return turnErr
	})
	if err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", lostRace(err, ErrNotBotTurn))
	}

	return that.finishTurn(ctx, player, game, cell)
}

// finishTurn counts the result once, on the saved placement that ended the game.
func (that *gamePlayService) finishTurn(ctx context.Context, player *entity.Player, game *entity.Game, cell int) (*TurnResult, error) {
	result := &TurnResult{Player: player, Game: game, Cell: cell}
	if !game.IsFinished() {
		return result, nil
	}

	score, err := that.scoreService.RecordResult(ctx, player.ID, game.Winner)
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	result.Score = score

	that.logger.Info("game finished", "gameID", game.ID, "playerID", player.ID, "winner", game.Winner)

	return result, nil
}

// lostRace reports a write that another request beat as the turn error the caller would have got one step later.
func lostRace(err, turnErr error) error {
	if errors.Is(err, repository.ErrGameConflict) {
		return fmt.Errorf("%w: %w", turnErr, err)
	}
	return err
}

func (that *gamePlayService) currentPlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	return player, nil
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if player.GameID == "" {
		return that.NewGame(ctx, player)
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.NewGame(ctx, player)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// NewGame drops the player's previous board and starts an empty one. The score is kept.
func (that *gamePlayService) NewGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	log := that.logger.With("method", "NewGame", "playerID", player.ID)

	if player.GameID != "" {
		err := that.gameService.DeleteGame(ctx, player.GameID)
		if err != nil && !errors.Is(err, repository.ErrGameNotFound) {
			log.Error("failed to delete previous game", "gameID", player.GameID, "error", err)
		}
	}

	game, err := that.gameService.CreateGame(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	log.Info("new game started", "gameID", game.ID)

	return game, nil
}
