package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID          string `json:"id"`
	PlayerID    string `json:"player_id,omitempty"`
	Board       Board  `json:"board"`
	Turn        Mark   `json:"player_turn"`
	Status      string `json:"status"`
	Winner      Mark   `json:"winner"`
	WinningLine *Line  `json:"winning_line,omitempty"`
	LastMove    *int   `json:"last_move,omitempty"`
}

func NewGame(id, playerID string) *Game {
	return &Game{
		ID:       id,
		PlayerID: playerID,
		Turn:     HumanMark,
		Status:   StatusOngoing,
	}
}

// ApplyOutcome finishes the game on a win or a draw and hands the turn over otherwise.
func (that *Game) ApplyOutcome(outcome Outcome, lastMark Mark) {
	switch outcome.Status {
	case OutcomeWin:
		that.Winner = outcome.Winner
		that.WinningLine = outcome.Line
		that.Status = StatusFinished
		that.Turn = EmptyCell
	case OutcomeDraw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = EmptyCell
	default:
		that.Status = StatusOngoing
		that.Turn = Opponent(lastMark)
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsComputerTurn() bool {
	return that.IsOngoing() && that.Turn == ComputerMark
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
