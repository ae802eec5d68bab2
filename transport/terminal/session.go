package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

const help = "commands: 0-8 play a cell, j N jump to move N, n new game, q quit"

var errUnknownCommand = errors.New("unknown command")

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error)
	Play(ctx context.Context, sessionID string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
}

// Session plays one game on a terminal, one command per input line.
type Session struct {
	logger    *slog.Logger
	games     gameUseCase
	renderer  *Renderer
	sessionID string
}

func NewSession(logger *slog.Logger, games gameUseCase, renderer *Renderer, sessionID string) *Session {
	return &Session{
		logger:    logger.With("component", "terminal", "session", sessionID),
		games:     games,
		renderer:  renderer,
		sessionID: sessionID,
	}
}

// Run reads commands from in until it is exhausted, the user quits or ctx is cancelled.
func (that *Session) Run(ctx context.Context, in io.Reader) error {
	game, err := that.games.GetOrCreateGame(ctx, that.sessionID)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	if err = that.renderer.Println(help); err != nil {
		return err
	}

	if err = that.renderer.Render(tictactoe.Render(game)); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "q" || line == "quit" {
			return nil
		}

		game, err = that.execute(ctx, line)
		switch {
		case errors.Is(err, errUnknownCommand), errors.Is(err, apperror.ErrInvalidIndex):
			if err = that.renderer.Println(err.Error() + "\n" + help); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		if err = that.renderer.Render(tictactoe.Render(game)); err != nil {
			return err
		}
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *Session) execute(ctx context.Context, line string) (*entity.Game, error) {
	fields := strings.Fields(line)

	switch {
	case fields[0] == "n" || fields[0] == "new":
		return that.games.Restart(ctx, that.sessionID)
	case (fields[0] == "j" || fields[0] == "jump") && len(fields) == 2:
		move, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errUnknownCommand, line)
		}
		return that.games.JumpTo(ctx, that.sessionID, move)
	case len(fields) == 1:
		cell, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errUnknownCommand, line)
		}
		return that.games.Play(ctx, that.sessionID, cell)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownCommand, line)
	}
}
