package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
)

func playAll(game *Game, cells ...int) {
	for _, cell := range cells {
		game.Play(cell)
	}
}

func TestNewGame(t *testing.T) {
	// When: a new game is created
	game := NewGame()

	// Then: it holds only the empty board and X moves first
	expectedGame := &Game{
		History:     []Snapshot{{}},
		CurrentMove: 0,
	}

	require.Equal(t, expectedGame, game)
	assert.Equal(t, X, game.NextPlayer())
	assert.Equal(t, StatusInProgress, game.Status())
}

func TestGame_Play(t *testing.T) {
	t.Run("Appends a board with the mover's mark", func(t *testing.T) {
		// Given: a game at move 0
		game := NewGame()

		// When: X plays the centre
		game.Play(4)

		// Then: history grows by one and the cursor follows it
		require.Len(t, game.History, 2)
		assert.Equal(t, 1, game.CurrentMove)
		assert.Equal(t, Snapshot{}.With(4, X), game.History[1])
		assert.Equal(t, Snapshot{}, game.History[0])
		assert.Equal(t, O, game.NextPlayer())
	})

	t.Run("New board differs from the previous one in the played cell only", func(t *testing.T) {
		// Given: a game with some moves
		game := NewGame()
		playAll(game, 0, 4, 8)
		k := game.CurrentMove

		// When: O plays cell 2
		game.Play(2)

		// Then: history has k+2 entries and only cell 2 changed
		require.Len(t, game.History, k+2)
		assert.Equal(t, k+1, game.CurrentMove)
		assert.Equal(t, game.History[k].With(2, O), game.History[k+1])
	})

	t.Run("Occupied cell is ignored", func(t *testing.T) {
		// Given: a game where X holds cell 0
		game := NewGame()
		game.Play(0)
		history := append([]Snapshot(nil), game.History...)

		// When: O tries cell 0, twice
		game.Play(0)
		game.Play(0)

		// Then: nothing changed
		assert.Equal(t, history, game.History)
		assert.Equal(t, 1, game.CurrentMove)
		assert.False(t, game.CanPlay(0))
	})

	t.Run("Out of range cells are ignored", func(t *testing.T) {
		// Given: a new game
		game := NewGame()

		// When: playing outside the board
		game.Play(-1)
		game.Play(9)
		game.Play(20)

		// Then: nothing changed
		assert.Equal(t, NewGame(), game)
	})

	t.Run("Moves after a win are ignored", func(t *testing.T) {
		// Given: X completes the top row
		game := NewGame()
		playAll(game, 0, 4, 1, 5, 2)

		winner, ok := game.Winner()
		require.True(t, ok)
		require.Equal(t, X, winner)
		require.Equal(t, StatusConcluded, game.Status())

		// When: O tries to keep playing
		game.Play(8)

		// Then: history is unchanged
		assert.Len(t, game.History, 6)
		assert.Equal(t, 5, game.CurrentMove)
	})

	t.Run("Does not touch boards already in history", func(t *testing.T) {
		// Given: a game branched from an earlier move
		game := NewGame()
		playAll(game, 0, 1, 2)
		kept := game.History[:2]
		require.NoError(t, game.JumpTo(1))

		// When: playing a different move from there
		game.Play(8)

		// Then: the earlier slice still sees the old boards
		assert.Equal(t, Snapshot{}.With(0, X), kept[1])
		assert.Equal(t, Snapshot{}.With(0, X).With(8, O), game.History[2])
	})
}

func TestGame_JumpTo(t *testing.T) {
	t.Run("Moves the cursor without touching history", func(t *testing.T) {
		// Given: a game at move 3
		game := NewGame()
		playAll(game, 0, 4, 8)
		require.Equal(t, 3, game.CurrentMove)

		// When: jumping to move 1
		err := game.JumpTo(1)

		// Then: the displayed board and turn are those of move 1
		require.NoError(t, err)
		assert.Equal(t, 1, game.CurrentMove)
		assert.Len(t, game.History, 4)
		assert.Equal(t, Snapshot{}.With(0, X), game.Current())
		assert.Equal(t, O, game.NextPlayer())
	})

	t.Run("Out of range index fails", func(t *testing.T) {
		// Given: a game with two boards
		game := NewGame()
		game.Play(0)

		for _, move := range []int{-1, 2, 10} {
			// When: jumping outside history
			err := game.JumpTo(move)

			// Then: ErrInvalidIndex is returned and nothing changes
			require.ErrorIs(t, err, apperror.ErrInvalidIndex)
			assert.Equal(t, 1, game.CurrentMove)
		}
	})

	t.Run("Playing after a jump discards later moves", func(t *testing.T) {
		// Given: a game with five moves
		game := NewGame()
		playAll(game, 0, 4, 1, 5, 2)

		// When: jumping to move 2 and playing
		require.NoError(t, game.JumpTo(2))
		game.Play(8)

		// Then: history was cut to three boards before appending
		require.Len(t, game.History, 4)
		assert.Equal(t, 3, game.CurrentMove)
		assert.Equal(t, Snapshot{}.With(0, X).With(4, O).With(8, X), game.Current())
	})

	t.Run("Jumping back from a won board re-enables play", func(t *testing.T) {
		// Given: a finished game
		game := NewGame()
		playAll(game, 0, 4, 1, 5, 2)
		require.True(t, game.IsConcluded())

		// When: jumping to move 4
		require.NoError(t, game.JumpTo(4))

		// Then: the game is in progress again and X may play elsewhere
		assert.Equal(t, StatusInProgress, game.Status())
		assert.True(t, game.CanPlay(8))
	})
}

func TestGame_Moves(t *testing.T) {
	t.Run("Labels every history entry", func(t *testing.T) {
		// Given: a game with two moves
		game := NewGame()
		playAll(game, 0, 4)

		// When: listing the moves
		var labels []string
		var indexes []int
		for move, label := range game.Moves() {
			indexes = append(indexes, move)
			labels = append(labels, label)
		}

		// Then: one label per board
		assert.Equal(t, []int{0, 1, 2}, indexes)
		assert.Equal(t, []string{"Go to game start", "Go to move #: 1", "Go to move #: 2"}, labels)
	})

	t.Run("Sequence is restartable and follows history", func(t *testing.T) {
		// Given: a sequence taken before another move
		game := NewGame()
		moves := game.Moves()

		count := func() int {
			n := 0
			for range moves {
				n++
			}
			return n
		}
		require.Equal(t, 1, count())

		// When: another move is played
		game.Play(0)

		// Then: ranging again sees the new entry
		assert.Equal(t, 2, count())
	})

	t.Run("Stops when the consumer breaks", func(t *testing.T) {
		game := NewGame()
		playAll(game, 0, 1, 2)

		seen := 0
		for range game.Moves() {
			seen++
			if seen == 2 {
				break
			}
		}

		assert.Equal(t, 2, seen)
	})
}

func TestGame_Scenarios(t *testing.T) {
	t.Run("X wins on the top row", func(t *testing.T) {
		// Given: a new game
		game := NewGame()

		// When: X 0, O 4, X 1, O 5, X 2
		playAll(game, 0, 4, 1, 5, 2)

		// Then: X is the winner and further play is ignored
		winner, ok := game.Winner()
		require.True(t, ok)
		assert.Equal(t, X, winner)

		before := append([]Snapshot(nil), game.History...)
		game.Play(3)
		game.Play(6)
		assert.Equal(t, before, game.History)
	})

	t.Run("Full board without a winner is a draw", func(t *testing.T) {
		// Given: a new game
		game := NewGame()

		// When: playing a drawn sequence
		for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			_, ok := game.Winner()
			require.False(t, ok)
			game.Play(cell)
		}

		// Then: no board had a winner and the last is a draw
		for _, board := range game.History {
			_, ok := Evaluate(board)
			assert.False(t, ok)
		}
		assert.Len(t, game.History, 10)
		assert.True(t, IsDraw(game.Current()))
		assert.Equal(t, StatusConcluded, game.Status())
	})
}

func TestGame_Validate(t *testing.T) {
	t.Run("Played games are valid", func(t *testing.T) {
		game := NewGame()
		playAll(game, 0, 4, 1, 5, 2)
		require.NoError(t, game.JumpTo(3))

		assert.NoError(t, game.Validate())
	})

	t.Run("Survives a JSON round trip", func(t *testing.T) {
		// Given: a game in progress
		game := NewGame()
		playAll(game, 4, 0)

		// When: encoding and decoding it
		data, err := json.Marshal(game)
		require.NoError(t, err)

		var restored Game
		require.NoError(t, json.Unmarshal(data, &restored))

		// Then: it is the same valid game
		assert.Equal(t, game, &restored)
		assert.NoError(t, restored.Validate())
	})

	t.Run("Rejects broken histories", func(t *testing.T) {
		tests := map[string]*Game{
			"empty history":       {},
			"non-empty start":     {History: []Snapshot{{X}}},
			"two marks at once":   {History: []Snapshot{{}, {X, O}}},
			"O moves first":       {History: []Snapshot{{}, {O}}},
			"unchanged board":     {History: []Snapshot{{}, {}}},
			"cursor out of range": {History: []Snapshot{{}}, CurrentMove: 1},
			"negative cursor":     {History: []Snapshot{{}}, CurrentMove: -1},
			"overwritten cell":    {History: []Snapshot{{}, {X}, {O}}},
			"move after the win":  winThenMove(),
		}

		for name, game := range tests {
			t.Run(name, func(t *testing.T) {
				assert.ErrorIs(t, game.Validate(), ErrCorruptGame)
			})
		}
	})
}

func winThenMove() *Game {
	game := NewGame()
	playAll(game, 0, 4, 1, 5, 2)
	game.History = append(game.History, game.Current().With(8, O))

	return game
}
