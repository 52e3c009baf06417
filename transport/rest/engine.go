package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

var errBoardDecided = errors.New("board is already decided")

type EngineHandler interface {
	Evaluate(ctx echo.Context) error
	BestMove(ctx echo.Context) error
}

type boardRequest struct {
	Board []entity.Mark `json:"board"`
	// Mark is the side to search for; the computer's when empty.
	Mark entity.Mark `json:"mark,omitempty"`
}

type bestMoveResponse struct {
	Cell   int                   `json:"cell"`
	Mark   entity.Mark           `json:"mark"`
	Scores []tictactoe.MoveScore `json:"scores"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type engineHandler struct {
	logger *slog.Logger
}

func NewEngineHandler(logger *slog.Logger) EngineHandler {
	return &engineHandler{
		logger: logger,
	}
}

func (that *engineHandler) Evaluate(ctx echo.Context) error {
	board, _, err := bindBoard(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	return ctx.JSON(http.StatusOK, tictactoe.Evaluate(board))
}

// BestMove refuses decided boards since the search has nothing to choose from there.
func (that *engineHandler) BestMove(ctx echo.Context) error {
	log := that.logger.With("method", "BestMove")

	board, mark, err := bindBoard(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if tictactoe.Evaluate(board).IsTerminal() {
		return ctx.JSON(http.StatusUnprocessableEntity, errorResponse{Error: errBoardDecided.Error()})
	}

	scores := tictactoe.Analyze(board, mark)
	cell := tictactoe.BestMoveFor(board, mark)

	log.Debug("best move found", "board", board.String(), "mark", mark, "cell", cell)

	return ctx.JSON(http.StatusOK, bestMoveResponse{
		Cell:   cell,
		Mark:   mark,
		Scores: scores,
	})
}

func bindBoard(ctx echo.Context) (entity.Board, entity.Mark, error) {
	var req boardRequest
	if err := ctx.Bind(&req); err != nil {
		return entity.Board{}, "", apperror.ErrInvalidBoard
	}

	board, err := entity.ParseBoard(req.Board)
	if err != nil {
		return entity.Board{}, "", err
	}

	mark := req.Mark
	if mark == entity.EmptyCell {
		mark = entity.ComputerMark
	}

	if mark != entity.PlayerX && mark != entity.PlayerO {
		return entity.Board{}, "", errors.New("mark must be X or O")
	}

	return board, mark, nil
}
