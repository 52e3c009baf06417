package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

var (
	ErrNotBotTurn       = errors.New("it's not the bot's turn")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) (int, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// MakeTurn plays the optimal move for the computer and returns the chosen cell.
func (that *botService) MakeTurn(game *entity.Game) (int, error) {
	if !game.IsComputerTurn() {
		return -1, ErrNotBotTurn
	}

	chosenCell := tictactoe.BestMove(game.Board)
	if chosenCell < 0 {
		return -1, ErrNoAvailableMoves
	}

	if err := tictactoe.MakeTurn(game, entity.ComputerMark, chosenCell); err != nil {
		return -1, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return chosenCell, nil
}
