package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

type scoreUseCase interface {
	GetScore(ctx context.Context, playerID string) (*entity.Score, error)
}

type ScoreHandler interface {
	GetScore(ctx echo.Context) error
}

type scoreHandler struct {
	logger *slog.Logger
	scores scoreUseCase
}

func NewScoreHandler(logger *slog.Logger, scores scoreUseCase) ScoreHandler {
	return &scoreHandler{
		logger: logger,
		scores: scores,
	}
}

func (that *scoreHandler) GetScore(ctx echo.Context) error {
	playerID := ctx.Param("id")

	score, err := that.scores.GetScore(ctx.Request().Context(), playerID)
	if err != nil {
		that.logger.Error("failed to get score", "playerID", playerID, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}

	return ctx.JSON(http.StatusOK, score)
}
