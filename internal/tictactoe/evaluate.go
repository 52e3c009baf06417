package tictactoe

import "github.com/rocketscienceinc/tictactoe-solo/internal/entity"

// Evaluate reports whether the board is won, drawn or still in progress.
// The first completed line in WinCombos order wins; the board is never modified.
func Evaluate(board entity.Board) entity.Outcome {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.Win(a, combo)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.InProgress()
	}

	return entity.Draw()
}
