package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moby/locker"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository"
)

type gameRepo interface {
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Game, error)
	Update(ctx context.Context, sessionID string, fn repository.UpdateFunc) (*entity.Game, error)
}

// GameManager runs one game per session. Events are applied through
// gameRepo.Update, which keeps replicas sharing a store from overwriting each
// other. The per-session lock orders events arriving at this process so they
// do not race each other inside the store.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	locks    *locker.Locker
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		locks:    locker.New(),
	}
}

// GetOrCreateGame returns the session's game, starting a new one if there is none.
func (that *GameManager) GetOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetBySessionID(ctx, sessionID)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return that.update(ctx, sessionID, func(*entity.Game) (bool, error) {
		return false, nil
	})
}

// Play applies a cell click. Clicks on taken cells or after the game concluded
// leave the game as it was and are not reported as errors.
func (that *GameManager) Play(ctx context.Context, sessionID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "Play", "session", sessionID, "cell", cell)

	game, err := that.update(ctx, sessionID, func(game *entity.Game) (bool, error) {
		if !game.CanPlay(cell) {
			log.Debug("move ignored", "current_move", game.CurrentMove, "status", game.Status())
			return false, nil
		}

		game.Play(cell)

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("move handled", "current_move", game.CurrentMove, "status", game.Status())

	return game, nil
}

// JumpTo changes which move of the session's game is displayed. An out of
// range move comes back as apperror.ErrInvalidIndex along with the unchanged game.
func (that *GameManager) JumpTo(ctx context.Context, sessionID string, move int) (*entity.Game, error) {
	log := that.logger.With("method", "JumpTo", "session", sessionID, "move", move)

	game, err := that.update(ctx, sessionID, func(game *entity.Game) (bool, error) {
		if err := game.JumpTo(move); err != nil {
			return false, err
		}

		return true, nil
	})
	if errors.Is(err, apperror.ErrInvalidIndex) {
		log.Warn("jump rejected", "error", err)
		return game, fmt.Errorf("failed to jump: %w", err)
	}

	if err != nil {
		return nil, err
	}

	return game, nil
}

// Restart replaces the session's game with an empty one.
func (that *GameManager) Restart(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.update(ctx, sessionID, func(game *entity.Game) (bool, error) {
		*game = *entity.NewGame()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	that.logger.Info("game restarted", "session", sessionID)

	return game, nil
}

func (that *GameManager) update(ctx context.Context, sessionID string, fn repository.UpdateFunc) (*entity.Game, error) {
	that.locks.Lock(sessionID)
	defer func() {
		_ = that.locks.Unlock(sessionID)
	}()

	game, err := that.gameRepo.Update(ctx, sessionID, fn)
	if errors.Is(err, apperror.ErrInvalidIndex) {
		return game, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}
