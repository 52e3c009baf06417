package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// MakeTurn places mark on cell and moves the game to its next state.
func MakeTurn(game *entity.Game, mark entity.Mark, cell int) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if err := validateMove(game, mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	game.Board[cell] = mark
	game.LastMove = &cell
	game.ApplyOutcome(Evaluate(game.Board), mark)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, mark entity.Mark, cell int) error {
	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}
