package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

const (
	colorX = "#E88388"
	colorO = "#71BEF2"
)

// Renderer draws a game view as coloured text.
type Renderer struct {
	output *termenv.Output
}

func NewRenderer(w io.Writer, opts ...termenv.OutputOption) *Renderer {
	return &Renderer{output: termenv.NewOutput(w, opts...)}
}

func (that *Renderer) Render(view tictactoe.View) error {
	var b strings.Builder

	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}

		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			cell := row*3 + col
			cells[col] = " " + that.cell(view, cell) + " "
		}
		b.WriteString(strings.Join(cells, "|") + "\n")
	}

	b.WriteString("\n" + that.output.String(view.Status).Bold().String() + "\n\n")

	for _, move := range view.Moves {
		marker := "  "
		label := that.output.String(move.Label)
		if move.Current {
			marker = "> "
			label = label.Underline()
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, move.Index, label.String())
	}

	if _, err := io.WriteString(that.output, b.String()); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}

	return nil
}

func (that *Renderer) Println(a ...any) error {
	if _, err := fmt.Fprintln(that.output, a...); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}

	return nil
}

// cell shows the mark, or the faint cell number on free squares so players know what to type.
func (that *Renderer) cell(view tictactoe.View, cell int) string {
	mark := view.Cells[cell]

	var style termenv.Style
	switch mark {
	case entity.X.String():
		style = that.output.String(mark).Foreground(that.output.Color(colorX))
	case entity.O.String():
		style = that.output.String(mark).Foreground(that.output.Color(colorO))
	default:
		return that.output.String(strconv.Itoa(cell)).Faint().String()
	}

	if view.InWinningLine(cell) {
		style = style.Bold().Reverse()
	}

	return style.String()
}
