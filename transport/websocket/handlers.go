package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
)

// userErrors are shown to the client verbatim; anything else gets a generic message.
var userErrors = []error{
	apperror.ErrGameFinished,
	apperror.ErrNotYourTurn,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
	apperror.ErrNoActiveGames,
	service.ErrInvalidName,
}

func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	that.register(conn, player.ID)
	log = log.With("playerID", player.ID)

	game, err := that.gameUseCase.GetOrCreateGame(ctx, player.ID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
	}
	player.GameID = game.ID

	score, err := that.gameUseCase.GetScore(ctx, player.ID)
	if err != nil {
		log.Error("failed to get score", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the score")
	}

	if err = conn.send(msg.Action, Payload{Player: player, Game: game, Score: score}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player")

	// the player left while the computer was thinking
	if game.IsComputerTurn() {
		return that.playComputer(ctx, conn, actionGameTurn)
	}

	return nil
}

func (that *Server) handleRename(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleRename", "playerID", conn.playerID)

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	player, err := that.gameUseCase.RenamePlayer(ctx, conn.playerID, payloadReq.Name)
	if err != nil {
		log.Warn("failed to rename player", "error", err)
		return that.sendErrorResponse(conn, msg.Action, describe(err, "failed to rename player"))
	}

	return conn.send(msg.Action, Payload{Player: player})
}

// handleNewGame resumes the current board, starting one if there is none.
func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame", "playerID", conn.playerID)

	game, err := that.gameUseCase.GetOrCreateGame(ctx, conn.playerID)
	if err != nil {
		log.Error("failed to create or get game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	return conn.send(msg.Action, Payload{Game: game})
}

// handleResetGame throws the current board away. The tally is kept.
func (that *Server) handleResetGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleResetGame", "playerID", conn.playerID)

	game, err := that.gameUseCase.NewGame(ctx, conn.playerID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to reset the game")
	}

	score, err := that.gameUseCase.GetScore(ctx, conn.playerID)
	if err != nil {
		log.Error("failed to get score", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the score")
	}

	log.Info("game reset", "gameID", game.ID)

	return conn.send(msg.Action, Payload{Game: game, Score: score})
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn", "playerID", conn.playerID)

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payloadReq.Cell == nil {
		log.Error("Cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Cell is required")
	}

	result, err := that.gameUseCase.MakeTurn(ctx, conn.playerID, *payloadReq.Cell)
	if err != nil {
		log.Warn("failed to make turn", "cell", *payloadReq.Cell, "error", err)

		payloadResp := Payload{Error: describe(err, "failed to make turn")}
		if result != nil {
			payloadResp.Game = result.Game
		}

		return conn.send(msg.Action, payloadResp)
	}

	if err = sendTurn(conn, msg.Action, result); err != nil {
		return err
	}

	if !result.Game.IsComputerTurn() {
		return nil
	}

	return that.playComputer(ctx, conn, msg.Action)
}

func (that *Server) handleGetScore(ctx context.Context, conn *connection, msg *Message) error {
	score, err := that.gameUseCase.GetScore(ctx, conn.playerID)
	if err != nil {
		that.logger.Error("failed to get score", "playerID", conn.playerID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the score")
	}

	return conn.send(msg.Action, Payload{Score: score})
}

// playComputer waits the thinking delay and sends the computer's reply.
func (that *Server) playComputer(ctx context.Context, conn *connection, action string) error {
	if err := that.think(ctx); err != nil {
		return err
	}

	result, err := that.gameUseCase.BotTurn(ctx, conn.playerID)
	if errors.Is(err, service.ErrNotBotTurn) {
		// another connection of this player already answered
		that.logger.Info("computer move already played", "playerID", conn.playerID)
		return nil
	}

	if err != nil {
		that.logger.Error("bot failed to make turn", "playerID", conn.playerID, "error", err)
		return that.sendErrorResponse(conn, action, "computer failed to move")
	}

	return sendTurn(conn, action, result)
}

func (that *Server) think(ctx context.Context) error {
	if that.thinkDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(that.thinkDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sendTurn(conn *connection, action string, result *service.TurnResult) error {
	cell := result.Cell

	payload := Payload{
		Game:  result.Game,
		Cell:  &cell,
		Score: result.Score,
	}

	if err := conn.send(action, payload); err != nil {
		return fmt.Errorf("failed to send game update: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := conn.send(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func describe(err error, fallback string) string {
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return fallback
}
