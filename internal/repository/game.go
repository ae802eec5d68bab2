package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

const maxUpdateRetries = 16

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrConcurrentUpdate = errors.New("game keeps changing concurrently")
)

// UpdateFunc changes game in place and reports whether anything changed.
type UpdateFunc func(game *entity.Game) (bool, error)

// GameRepository keeps the game of every session.
type GameRepository interface {
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Game, error)
	// Update loads the session's game, or a new one if there is none, and
	// runs fn on it. The result is stored when fn changed it or the game is
	// new. No other update of the same session can slip in between. When fn
	// fails nothing is stored and the loaded game comes back with the error.
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (*entity.Game, error)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGameRepository stores games as JSON under "game:<session>". Keys
// expire ttl after the last write; zero ttl keeps them forever.
func NewRedisGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &redisGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(sessionID string) string {
	return "game:" + sessionID
}

func (that *redisGame) GetBySessionID(ctx context.Context, sessionID string) (*entity.Game, error) {
	return that.load(ctx, that.client, sessionID)
}

// Update runs fn inside WATCH/MULTI so a write made by another replica
// between the read and the write aborts the transaction, and fn is re-run
// on the fresh game.
func (that *redisGame) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*entity.Game, error) {
	key := gameKey(sessionID)

	var updated *entity.Game
	txf := func(tx *redis.Tx) error {
		updated = nil

		game, err := that.load(ctx, tx, sessionID)
		created := errors.Is(err, ErrGameNotFound)
		if created {
			game = entity.NewGame()
		} else if err != nil {
			return err
		}

		updated = game

		changed, err := fn(game)
		if err != nil {
			return err
		}

		if !changed && !created {
			return nil
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		})

		return err
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return updated, err
	}

	return nil, fmt.Errorf("%w: session %s", ErrConcurrentUpdate, sessionID)
}

func (that *redisGame) load(ctx context.Context, client getter, sessionID string) (*entity.Game, error) {
	response, err := client.Get(ctx, gameKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by session: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	if err = existingGame.Validate(); err != nil {
		return nil, fmt.Errorf("stored game for session %s: %w", sessionID, err)
	}

	return &existingGame, nil
}
