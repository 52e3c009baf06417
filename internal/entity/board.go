package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// The human always plays X and moves first.
const (
	HumanMark    = PlayerX
	ComputerMark = PlayerO
)

const BoardSize = 9

// Line is a triple of cell indices that wins when all three hold the same mark.
type Line [3]int

// WinCombos are scanned in this order: rows, columns, diagonals.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid: cell i sits at row i/3, column i%3.
type Board [BoardSize]Mark

// ParseBoard builds a board from nine marks; "-" is accepted for an empty cell.
func ParseBoard(marks []Mark) (Board, error) {
	var board Board

	if len(marks) != BoardSize {
		return board, fmt.Errorf("%w: want %d cells, got %d", apperror.ErrInvalidBoard, BoardSize, len(marks))
	}

	for i, mark := range marks {
		if mark == PlayerTie {
			mark = EmptyCell
		}

		if !mark.IsValid() {
			return board, fmt.Errorf("%w: cell %d holds %q", apperror.ErrInvalidBoard, i, mark)
		}

		board[i] = mark
	}

	return board, nil
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// String serializes the board with "-" for empty cells, e.g. "XO--X---O".
func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)

	for _, cell := range that {
		if cell == EmptyCell {
			sb.WriteByte('-')
			continue
		}
		sb.WriteString(string(cell))
	}

	return sb.String()
}

func (that Mark) IsValid() bool {
	return that == EmptyCell || that == PlayerX || that == PlayerO
}

func Opponent(mark Mark) Mark {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
