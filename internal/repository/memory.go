package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

type memoryGame struct {
	mu    sync.Mutex
	games *ttlcache.Cache[string, entity.Game]
}

// NewMemoryGameRepository keeps games in process memory. Entries expire ttl
// after the last write; reads do not extend them.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemoryGameRepository(ttl)
}

func newMemoryGameRepository(ttl time.Duration) *memoryGame {
	return &memoryGame{
		games: ttlcache.New[string, entity.Game](
			ttlcache.WithTTL[string, entity.Game](ttl),
			ttlcache.WithDisableTouchOnHit[string, entity.Game](),
		),
	}
}

func (that *memoryGame) GetBySessionID(_ context.Context, sessionID string) (*entity.Game, error) {
	item := that.games.Get(sessionID)
	if item == nil {
		return nil, ErrGameNotFound
	}

	game := copyGame(item.Value())

	return &game, nil
}

func (that *memoryGame) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, err := that.GetBySessionID(ctx, sessionID)
	created := err != nil
	if created {
		game = entity.NewGame()
	}

	changed, err := fn(game)
	if err != nil {
		return game, err
	}

	if changed || created {
		that.games.Set(sessionID, copyGame(*game), ttlcache.DefaultTTL)
		that.games.DeleteExpired()
	}

	return game, nil
}

// copyGame detaches the stored history from the caller's slice.
func copyGame(game entity.Game) entity.Game {
	return entity.Game{
		History:     append([]entity.Snapshot(nil), game.History...),
		CurrentMove: game.CurrentMove,
	}
}
