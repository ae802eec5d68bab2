package entity

import (
	"errors"
	"fmt"
)

// BoardSize is the number of cells on the board, indexed 0..8 row-major.
const BoardSize = 9

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

var ErrUnknownMark = errors.New("unknown mark")

// WinCombos lists the rows, columns and diagonals in the order they are checked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

func (c Cell) MarshalText() ([]byte, error) {
	if c > O {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMark, c)
	}

	return []byte(c.String()), nil
}

func (c *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*c = Empty
	case "X":
		*c = X
	case "O":
		*c = O
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMark, text)
	}

	return nil
}

// Snapshot is one board state. It is an array, so assignment copies it and a
// stored snapshot can never be edited through another reference.
type Snapshot [BoardSize]Cell

// With returns a copy of the snapshot with cell set to mark.
func (s Snapshot) With(cell int, mark Cell) Snapshot {
	s[cell] = mark
	return s
}

func (s Snapshot) IsFull() bool {
	for _, cell := range s {
		if cell == Empty {
			return false
		}
	}

	return true
}

// WinningLine returns the first combo in WinCombos whose three cells hold the same mark.
func WinningLine(s Snapshot) ([3]int, bool) {
	for _, combo := range WinCombos {
		a, b, c := s[combo[0]], s[combo[1]], s[combo[2]]
		if a != Empty && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

// Evaluate reports the winning mark of the snapshot, if any.
func Evaluate(s Snapshot) (Cell, bool) {
	line, ok := WinningLine(s)
	if !ok {
		return Empty, false
	}

	return s[line[0]], true
}

// IsDraw - all cells are taken and nobody has a line.
func IsDraw(s Snapshot) bool {
	if _, ok := Evaluate(s); ok {
		return false
	}

	return s.IsFull()
}
