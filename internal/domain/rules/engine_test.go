package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goban/internal/domain/game"
)

func pt(row, col int) game.Point {
	return game.Point{Row: row, Col: col}
}

// setup replays stones without validation so tests can build positions directly.
func setup(e *Engine, color game.Color, points ...game.Point) {
	for _, p := range points {
		e.ReplayStone(color, p)
	}
}

// koPosition builds a ko shape on a 9x9 board:
//
//	. B W .
//	B W . W
//	. B W .
//
// Black playing (1,2) captures the white stone at (1,1).
func koPosition(t *testing.T) *Engine {
	t.Helper()
	e := New(9)
	setup(e, game.Black, pt(0, 1), pt(1, 0), pt(2, 1))
	setup(e, game.White, pt(1, 1), pt(0, 2), pt(2, 2), pt(1, 3))
	return e
}

func TestEngine_ValidateMove_OutOfBounds(t *testing.T) {
	e := New(9)

	for _, p := range []game.Point{pt(-1, 0), pt(0, -1), pt(9, 0), pt(0, 9), pt(9, 9), pt(-5, 20)} {
		// When: validating a move outside the board
		res := e.ValidateMove(game.Black, p)

		// Then: the outcome is OutOfBounds
		assert.Equal(t, OutOfBounds, res.Kind, "point %v", p)
		assert.False(t, res.OK())
	}
}

func TestEngine_ValidateMove_Occupied(t *testing.T) {
	// Given: a black stone at the centre
	e := New(9)
	_, err := e.PlaceStone(game.Black, pt(4, 4))
	require.NoError(t, err)

	// When: either colour tries the same point
	// Then: both are rejected as Occupied
	assert.Equal(t, Occupied, e.ValidateMove(game.Black, pt(4, 4)).Kind)
	assert.Equal(t, Occupied, e.ValidateMove(game.White, pt(4, 4)).Kind)
}

func TestEngine_ValidateMove_Suicide(t *testing.T) {
	t.Run("lone stone surrounded by living stones is suicide", func(t *testing.T) {
		// Given: black stones around (1,1), each with outside liberties
		e := New(9)
		setup(e, game.Black, pt(0, 1), pt(1, 0), pt(1, 2), pt(2, 1))

		// When: white plays into the hole
		res := e.ValidateMove(game.White, pt(1, 1))

		// Then: it is suicide and the board is untouched
		assert.Equal(t, Suicide, res.Kind)
		assert.Len(t, e.BoardState(), 4)
	})

	t.Run("corner suicide", func(t *testing.T) {
		e := New(9)
		setup(e, game.Black, pt(0, 1), pt(1, 0))

		assert.Equal(t, Suicide, e.ValidateMove(game.White, pt(0, 0)).Kind)
	})

	t.Run("filling own last liberty of a group is suicide", func(t *testing.T) {
		// Given: a white group of two with a single shared liberty at (0,0)
		e := New(9)
		setup(e, game.White, pt(0, 1), pt(1, 0), pt(1, 1))
		setup(e, game.Black, pt(0, 2), pt(1, 2), pt(2, 0), pt(2, 1))

		// When: white fills the last liberty
		res := e.ValidateMove(game.White, pt(0, 0))

		// Then: the whole group would have no liberties
		assert.Equal(t, Suicide, res.Kind)
	})

	t.Run("capture enables play", func(t *testing.T) {
		// Given: black stones at (0,1) and (1,0) whose only liberty is (0,0)
		e := New(9)
		setup(e, game.Black, pt(0, 1), pt(1, 0))
		setup(e, game.White, pt(0, 2), pt(1, 1), pt(2, 0))

		// When: white plays the corner
		res := e.ValidateMove(game.White, pt(0, 0))

		// Then: the move is legal because it captures
		assert.Equal(t, Valid, res.Kind)

		captured, err := e.PlaceStone(game.White, pt(0, 0))
		require.NoError(t, err)
		assert.ElementsMatch(t, []game.Point{pt(0, 1), pt(1, 0)}, captured)
	})
}

func TestEngine_Ko(t *testing.T) {
	t.Run("immediate single-stone recapture is a ko violation", func(t *testing.T) {
		// Given: black captures one white stone in a ko shape
		e := koPosition(t)
		captured, err := e.PlaceStone(game.Black, pt(1, 2))
		require.NoError(t, err)
		require.Equal(t, []game.Point{pt(1, 1)}, captured)

		// When: white tries to retake at once
		res := e.ValidateMove(game.White, pt(1, 1))

		// Then: it is a ko violation
		assert.Equal(t, KoViolation, res.Kind)
		assert.NotEmpty(t, res.Reason)

		_, err = e.PlaceStone(game.White, pt(1, 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidMove)
		var invalid *InvalidMoveError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, KoViolation, invalid.Outcome.Kind)
	})

	t.Run("retake is legal after a move elsewhere", func(t *testing.T) {
		e := koPosition(t)
		_, err := e.PlaceStone(game.Black, pt(1, 2))
		require.NoError(t, err)

		// Given: white plays a ko threat elsewhere and black answers
		_, err = e.PlaceStone(game.White, pt(6, 6))
		require.NoError(t, err)
		_, err = e.PlaceStone(game.Black, pt(6, 7))
		require.NoError(t, err)

		// When: white retakes
		captured, err := e.PlaceStone(game.White, pt(1, 1))

		// Then: the black stone at (1,2) is captured
		require.NoError(t, err)
		assert.Equal(t, []game.Point{pt(1, 2)}, captured)
	})

	t.Run("multi-stone capture never triggers ko", func(t *testing.T) {
		// Given: two white stones in atari, black about to capture both
		e := New(9)
		setup(e, game.White, pt(0, 0), pt(0, 1))
		setup(e, game.Black, pt(1, 0), pt(1, 1))

		// When: black captures the pair with the last placed stone
		captured, err := e.PlaceStone(game.Black, pt(0, 2))
		require.NoError(t, err)
		require.Len(t, captured, 2)

		// Then: the ko marker is the capturing stone, and nothing single is captured
		ko, ok := e.KoPoint()
		require.True(t, ok)
		assert.Equal(t, pt(0, 2), ko)
		assert.Equal(t, Valid, e.ValidateMove(game.White, pt(0, 0)).Kind)
	})
}

func TestEngine_PlaceStone(t *testing.T) {
	t.Run("places stone and records ko marker", func(t *testing.T) {
		e := New(19)

		captured, err := e.PlaceStone(game.Black, pt(3, 15))

		require.NoError(t, err)
		assert.Empty(t, captured)
		color, ok := e.BoardState().At(pt(3, 15))
		require.True(t, ok)
		assert.Equal(t, game.Black, color)
		ko, ok := e.KoPoint()
		require.True(t, ok)
		assert.Equal(t, pt(3, 15), ko)
	})

	t.Run("rejected move leaves board unchanged", func(t *testing.T) {
		e := New(9)

		_, err := e.PlaceStone(game.White, pt(9, 0))

		require.ErrorIs(t, err, ErrInvalidMove)
		assert.Empty(t, e.BoardState())
		_, ok := e.KoPoint()
		assert.False(t, ok)
	})

	t.Run("captures a large ring-shaped group", func(t *testing.T) {
		// Given: a white ring around an empty eye at (2,2), surrounded by black,
		// with the eye as its only liberty
		e := New(5)
		ring := []game.Point{pt(1, 1), pt(1, 2), pt(1, 3), pt(2, 1), pt(2, 3), pt(3, 1), pt(3, 2), pt(3, 3)}
		setup(e, game.White, ring...)
		setup(e, game.Black,
			pt(0, 1), pt(0, 2), pt(0, 3),
			pt(1, 0), pt(2, 0), pt(3, 0),
			pt(1, 4), pt(2, 4), pt(3, 4),
			pt(4, 1), pt(4, 2), pt(4, 3),
		)

		// When: black fills the eye
		captured, err := e.PlaceStone(game.Black, pt(2, 2))

		// Then: the whole ring is captured
		require.NoError(t, err)
		assert.ElementsMatch(t, ring, captured)
		assert.Len(t, e.BoardState(), 13)
	})
}

func TestEngine_ReplayStone(t *testing.T) {
	// Given: a position where white at (0,0) would be suicide
	e := New(9)
	setup(e, game.Black, pt(0, 1), pt(1, 0))
	require.Equal(t, Suicide, e.ValidateMove(game.White, pt(0, 0)).Kind)

	// When: the move is replayed
	captured := e.ReplayStone(game.White, pt(0, 0))

	// Then: it is committed without validation and updates the ko marker
	assert.Empty(t, captured)
	color, ok := e.BoardState().At(pt(0, 0))
	require.True(t, ok)
	assert.Equal(t, game.White, color)
	ko, _ := e.KoPoint()
	assert.Equal(t, pt(0, 0), ko)
}

func TestEngine_BoardStateIsACopy(t *testing.T) {
	e := New(9)
	_, err := e.PlaceStone(game.Black, pt(2, 2))
	require.NoError(t, err)

	snapshot := e.BoardState()
	snapshot[pt(5, 5)] = game.White
	delete(snapshot, pt(2, 2))

	board := e.BoardState()
	assert.Len(t, board, 1)
	_, ok := board[pt(2, 2)]
	assert.True(t, ok)
}

func TestEngine_ClearBoard(t *testing.T) {
	// Given: a ko has just been taken
	e := koPosition(t)
	_, err := e.PlaceStone(game.Black, pt(1, 2))
	require.NoError(t, err)

	// When: the board is cleared
	e.ClearBoard()

	// Then: the board is empty and no ko is remembered
	assert.Empty(t, e.BoardState())
	_, ok := e.KoPoint()
	assert.False(t, ok)

	setup(e, game.Black, pt(0, 1), pt(1, 0), pt(2, 1), pt(1, 2))
	e.ClearBoard()
	assert.Equal(t, Valid, e.ValidateMove(game.White, pt(1, 1)).Kind)
}
