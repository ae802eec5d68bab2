package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-history/internal/config"
	"github.com/rocketscienceinc/tictactoe-history/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository"
	"github.com/rocketscienceinc/tictactoe-history/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-history/transport/terminal"
)

// main - plays one game on the terminal. Logs go to stderr so stdout only shows the board.
func main() {
	conf, err := config.Defaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(conf.Session.TTL))
	renderer := terminal.NewRenderer(os.Stdout, termenv.WithColorCache(true))
	session := terminal.NewSession(logger, games, renderer, pkg.GenerateNewSessionID())

	if err = session.Run(ctx, os.Stdin); err != nil {
		logger.Error("terminal session failed", "error", err)
		os.Exit(1)
	}
}
