package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

const DrawStatus = "Draw"

// MoveView is one entry of the history list.
type MoveView struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// View is everything a rendering surface needs to draw the game.
type View struct {
	Cells       [entity.BoardSize]string `json:"cells"`
	Status      string                   `json:"status"`
	NextPlayer  string                   `json:"next_player,omitempty"`
	Winner      string                   `json:"winner,omitempty"`
	WinningLine []int                    `json:"winning_line,omitempty"`
	Draw        bool                     `json:"draw"`
	Concluded   bool                     `json:"concluded"`
	CurrentMove int                      `json:"current_move"`
	Moves       []MoveView               `json:"moves"`
}

// Render derives the view of the displayed board. It never mutates the game.
func Render(game *entity.Game) View {
	current := game.Current()

	view := View{
		Status:      StatusText(game),
		Concluded:   game.IsConcluded(),
		Draw:        entity.IsDraw(current),
		CurrentMove: game.CurrentMove,
		Moves:       make([]MoveView, 0, len(game.History)),
	}

	for cell, mark := range current {
		view.Cells[cell] = mark.String()
	}

	if line, ok := entity.WinningLine(current); ok {
		view.Winner = current[line[0]].String()
		view.WinningLine = line[:]
	}

	if !view.Concluded {
		view.NextPlayer = game.NextPlayer().String()
	}

	for move, label := range game.Moves() {
		view.Moves = append(view.Moves, MoveView{
			Index:   move,
			Label:   label,
			Current: move == game.CurrentMove,
		})
	}

	return view
}

// StatusText - "Winner: X", "Draw" or "Next player: O" for the displayed board.
func StatusText(game *entity.Game) string {
	current := game.Current()

	if winner, ok := entity.Evaluate(current); ok {
		return "Winner: " + winner.String()
	}

	if current.IsFull() {
		return DrawStatus
	}

	return "Next player: " + game.NextPlayer().String()
}

// InWinningLine reports whether cell belongs to the highlighted line.
func (that View) InWinningLine(cell int) bool {
	for _, c := range that.WinningLine {
		if c == cell {
			return true
		}
	}

	return false
}
