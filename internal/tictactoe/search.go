package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const winScore = 10

// MoveScore is the minimax value of playing Cell, from the searching side's point of view.
type MoveScore struct {
	Cell  int `json:"cell"`
	Score int `json:"score"`
}

// BestMove picks the computer's move. The board must be in progress.
func BestMove(board entity.Board) int {
	return BestMoveFor(board, entity.ComputerMark)
}

// BestMoveFor picks the optimal move for mark. Among equal scores the lowest cell wins.
// It returns -1 when the board is already decided.
func BestMoveFor(board entity.Board, mark entity.Mark) int {
	bestCell, bestScore := -1, math.MinInt

	for _, move := range Analyze(board, mark) {
		if move.Score > bestScore {
			bestCell, bestScore = move.Cell, move.Score
		}
	}

	return bestCell
}

// Analyze scores every empty cell for mark with an exhaustive minimax.
// Wins score 10 minus the depth they are reached at, losses the depth minus 10, draws 0.
func Analyze(board entity.Board, mark entity.Mark) []MoveScore {
	if Evaluate(board).IsTerminal() {
		return nil
	}

	moves := make([]MoveScore, 0, entity.BoardSize)
	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = mark
		moves = append(moves, MoveScore{
			Cell:  cell,
			Score: minimax(&board, mark, entity.Opponent(mark), 1),
		})
		board[cell] = entity.EmptyCell
	}

	return moves
}

// minimax scores the position for self when toMove is about to play, depth plies below the root.
func minimax(board *entity.Board, self, toMove entity.Mark, depth int) int {
	switch outcome := Evaluate(*board); outcome.Status {
	case entity.OutcomeWin:
		if outcome.Winner == self {
			return winScore - depth
		}
		return depth - winScore
	case entity.OutcomeDraw:
		return 0
	}

	maximizing := toMove == self

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for cell := range board {
		if board[cell] != entity.EmptyCell {
			continue
		}

		board[cell] = toMove
		score := minimax(board, self, entity.Opponent(toMove), depth+1)
		board[cell] = entity.EmptyCell

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
