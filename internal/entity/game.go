package entity

import (
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusConcluded  Status = "concluded"
)

const startLabel = "Go to game start"

var ErrCorruptGame = errors.New("corrupt game history")

// Game keeps every board played so far and which of them is on display.
// The player to move and whether the game is over are always derived from
// the displayed snapshot. A Game is not safe for concurrent use.
type Game struct {
	History     []Snapshot `json:"history"`
	CurrentMove int        `json:"current_move"`
}

func NewGame() *Game {
	return &Game{
		History:     []Snapshot{{}},
		CurrentMove: 0,
	}
}

// Current returns the displayed snapshot.
func (that *Game) Current() Snapshot {
	return that.History[that.CurrentMove]
}

// NextPlayer - X moves on even indexes, O on odd ones.
func (that *Game) NextPlayer() Cell {
	return markForMove(that.CurrentMove)
}

func (that *Game) Winner() (Cell, bool) {
	return Evaluate(that.Current())
}

func (that *Game) Status() Status {
	if IsConcluded(that.Current()) {
		return StatusConcluded
	}

	return StatusInProgress
}

func (that *Game) IsConcluded() bool {
	return that.Status() == StatusConcluded
}

// CanPlay reports whether Play(cell) would change the game.
func (that *Game) CanPlay(cell int) bool {
	if cell < 0 || cell >= BoardSize {
		return false
	}

	current := that.Current()
	if current[cell] != Empty {
		return false
	}

	return !IsConcluded(current)
}

// Play puts the next player's mark on cell. Any moves after the displayed one
// are dropped before the new board is appended. Illegal moves are ignored.
func (that *Game) Play(cell int) {
	if !that.CanPlay(cell) {
		return
	}

	next := that.Current().With(cell, that.NextPlayer())

	// full slice expression so the append never writes into a shared backing array
	history := that.History[:that.CurrentMove+1:that.CurrentMove+1]
	that.History = append(history, next)
	that.CurrentMove = len(that.History) - 1
}

// JumpTo changes the displayed move. History is left as is.
func (that *Game) JumpTo(move int) error {
	if move < 0 || move >= len(that.History) {
		return fmt.Errorf("%w: move %d of %d", apperror.ErrInvalidIndex, move, len(that.History))
	}

	that.CurrentMove = move

	return nil
}

// Moves yields one navigation label per history entry. The sequence reads the
// history length each time it is ranged over.
func (that *Game) Moves() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for move := range that.History {
			if !yield(move, MoveLabel(move)) {
				return
			}
		}
	}
}

func MoveLabel(move int) string {
	if move == 0 {
		return startLabel
	}

	return "Go to move #: " + strconv.Itoa(move)
}

// Validate checks a game restored from storage: the first board is empty,
// every board adds exactly one mark of the right player, and the cursor is in range.
func (that *Game) Validate() error {
	if len(that.History) == 0 {
		return fmt.Errorf("%w: empty history", ErrCorruptGame)
	}

	if that.History[0] != (Snapshot{}) {
		return fmt.Errorf("%w: game does not start from an empty board", ErrCorruptGame)
	}

	for move := 1; move < len(that.History); move++ {
		if err := checkStep(that.History[move-1], that.History[move], markForMove(move-1)); err != nil {
			return fmt.Errorf("%w: move %d: %w", ErrCorruptGame, move, err)
		}
	}

	if that.CurrentMove < 0 || that.CurrentMove >= len(that.History) {
		return fmt.Errorf("%w: current move %d out of range", ErrCorruptGame, that.CurrentMove)
	}

	return nil
}

// IsConcluded - somebody won or the board is full.
func IsConcluded(s Snapshot) bool {
	if _, ok := Evaluate(s); ok {
		return true
	}

	return s.IsFull()
}

func markForMove(move int) Cell {
	if move%2 == 0 {
		return X
	}

	return O
}

var (
	errChangedCells = errors.New("board must change in exactly one cell")
	errWrongMark    = errors.New("wrong mark placed")
	errAfterEnd     = errors.New("move played after the game concluded")
)

func checkStep(prev, next Snapshot, mark Cell) error {
	if IsConcluded(prev) {
		return errAfterEnd
	}

	changed := 0
	for cell := range prev {
		if prev[cell] == next[cell] {
			continue
		}

		changed++
		if prev[cell] != Empty || next[cell] != mark {
			return fmt.Errorf("%w: cell %d", errWrongMark, cell)
		}
	}

	if changed != 1 {
		return fmt.Errorf("%w: %d changed", errChangedCells, changed)
	}

	return nil
}
