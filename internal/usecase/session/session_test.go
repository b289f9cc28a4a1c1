package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goban/internal/domain/flow"
	"goban/internal/domain/game"
	"goban/internal/domain/rules"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
)

func newGame(t *testing.T, size int) *Session {
	t.Helper()

	s := New("test", size, 6.5)
	require.NoError(t, s.StartNewGame(size, 6.5))
	return s
}

func play(t *testing.T, s *Session, row, col int) MoveResult {
	t.Helper()

	res, err := s.PlayMove(game.Point{Row: row, Col: col})
	require.NoError(t, err)
	return res
}

func TestSession_StartNewGame(t *testing.T) {
	t.Run("fresh game waits for black", func(t *testing.T) {
		s := New("test", 19, 6.5)
		assert.Equal(t, flow.MainMenu, s.Phase())

		require.NoError(t, s.StartNewGame(9, 7.5))

		snap := s.Snapshot()
		assert.Equal(t, flow.BlackTurn, snap.Phase)
		assert.Equal(t, 9, snap.BoardSize)
		assert.InDelta(t, 7.5, snap.Komi, 1e-9)
		assert.Equal(t, game.Black, snap.ToMove)
		assert.Empty(t, snap.Stones)
		assert.Nil(t, snap.KoPoint)
	})

	t.Run("board size is checked", func(t *testing.T) {
		s := New("test", 19, 6.5)

		assert.ErrorIs(t, s.StartNewGame(0, 6.5), errs.ErrInvalidBoardSize)
		assert.ErrorIs(t, s.StartNewGame(30, 6.5), errs.ErrInvalidBoardSize)
		assert.Equal(t, flow.MainMenu, s.Phase())
	})

	t.Run("hooks see every phase entered", func(t *testing.T) {
		var entered []flow.Phase
		s := New("test", 9, 6.5, flow.HookFuncs{OnEnter: func(p flow.Phase) {
			entered = append(entered, p)
		}})
		require.NoError(t, s.StartNewGame(9, 6.5))

		require.GreaterOrEqual(t, len(entered), 2)
		assert.Equal(t, []flow.Phase{flow.GameSetup, flow.BlackTurn}, entered[len(entered)-2:])
	})
}

func TestSession_PlayMove(t *testing.T) {
	t.Run("accepted move hands the turn over", func(t *testing.T) {
		// Given: a new 9x9 game
		s := newGame(t, 9)

		// When: black plays the centre
		res := play(t, s, 4, 4)

		// Then: the stone is down and white is to move
		assert.True(t, res.Outcome.OK())
		assert.Equal(t, 1, res.MoveNumber)
		assert.Equal(t, flow.WhiteTurn, s.Phase())

		snap := s.Snapshot()
		assert.Equal(t, []game.Stone{{Point: game.Point{Row: 4, Col: 4}, Color: game.Black}}, snap.Stones)
		require.NotNil(t, snap.KoPoint)
		assert.Equal(t, game.Point{Row: 4, Col: 4}, *snap.KoPoint)
		assert.Equal(t, game.White, snap.ToMove)
	})

	t.Run("rejected move keeps the turn", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 4, 4)

		// When: white plays on the occupied point
		res, err := s.PlayMove(game.Point{Row: 4, Col: 4})

		// Then: the outcome says why and white is still to move
		require.ErrorIs(t, err, rules.ErrInvalidMove)
		assert.Equal(t, rules.Occupied, res.Outcome.Kind)
		assert.Equal(t, flow.WhiteTurn, s.Phase())
		assert.Len(t, s.History(), 1)
	})

	t.Run("out of bounds", func(t *testing.T) {
		s := newGame(t, 9)

		res, err := s.PlayMove(game.Point{Row: 9, Col: 0})

		require.ErrorIs(t, err, rules.ErrInvalidMove)
		assert.Equal(t, rules.OutOfBounds, res.Outcome.Kind)
		assert.Equal(t, flow.BlackTurn, s.Phase())
	})

	t.Run("captures are reported", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 0, 1)
		play(t, s, 0, 0)

		res := play(t, s, 1, 0)

		assert.Equal(t, []game.Point{{Row: 0, Col: 0}}, res.Captured)
		snap := s.Snapshot()
		assert.Equal(t, []game.Point{{Row: 0, Col: 0}}, snap.LastCaptures)
		assert.Len(t, snap.Stones, 2)
	})

	t.Run("not a turn phase", func(t *testing.T) {
		s := New("test", 9, 6.5)

		_, err := s.PlayMove(game.Point{Row: 0, Col: 0})

		assert.ErrorIs(t, err, errs.ErrNotPlayersTurn)
		assert.Equal(t, flow.MainMenu, s.Phase())
	})
}

func TestSession_EndOfGame(t *testing.T) {
	t.Run("two passes in a row", func(t *testing.T) {
		s := newGame(t, 9)

		phase, err := s.Pass()
		require.NoError(t, err)
		assert.Equal(t, flow.WhiteTurn, phase)

		phase, err = s.Pass()
		require.NoError(t, err)
		assert.Equal(t, flow.ScoreCalculation, phase)

		phase, err = s.FinishScoring()
		require.NoError(t, err)
		assert.Equal(t, flow.GameOver, phase)

		phase, err = s.ReturnToMenu()
		require.NoError(t, err)
		assert.Equal(t, flow.MainMenu, phase)
	})

	t.Run("a pass after a move does not end the game", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 2, 2)

		phase, err := s.Pass()
		require.NoError(t, err)
		assert.Equal(t, flow.BlackTurn, phase)

		phase, err = s.Pass()
		require.NoError(t, err)
		assert.Equal(t, flow.ScoreCalculation, phase)
		assert.Len(t, s.History(), 3)
	})

	t.Run("resignation", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 2, 2)

		phase, err := s.Resign()

		require.NoError(t, err)
		assert.Equal(t, flow.ScoreCalculation, phase)
		assert.Equal(t, "B+R", s.Snapshot().Result)
	})

	t.Run("scoring outside score calculation", func(t *testing.T) {
		s := newGame(t, 9)

		_, err := s.FinishScoring()
		assert.ErrorIs(t, err, errs.ErrWrongPhase)

		_, err = s.ReturnToMenu()
		assert.ErrorIs(t, err, errs.ErrWrongPhase)
		assert.Equal(t, flow.BlackTurn, s.Phase())
	})
}

func TestSession_Save(t *testing.T) {
	t.Run("nothing to save", func(t *testing.T) {
		s := newGame(t, 9)

		_, err := s.Save(nil)

		assert.ErrorIs(t, err, errs.ErrNoMovesToSave)
		assert.Equal(t, flow.BlackTurn, s.Phase())
	})

	t.Run("saving returns to the same turn", func(t *testing.T) {
		// Given: one black move
		s := newGame(t, 9)
		play(t, s, 3, 3)

		// When: the game is saved with a player name
		text, err := s.Save(sgf.Properties{{Key: sgf.KeyBlack, Value: "Alice"}})

		// Then: size and komi come from the game, white is still to move
		require.NoError(t, err)
		assert.Equal(t, "(;GM[1]FF[4]SZ[9]KM[6.5]PW[White]PB[Alice]B[dd])", text)
		assert.Equal(t, flow.WhiteTurn, s.Phase())
	})

	t.Run("size and komi cannot be overridden", func(t *testing.T) {
		// Given: a 19x19 game with a move past the ninth line
		s := newGame(t, 19)
		play(t, s, 15, 15)

		// When: the caller asks for a different size and komi
		text, err := s.Save(sgf.Properties{
			{Key: sgf.KeySize, Value: "9"},
			{Key: sgf.KeyKomi, Value: "0.5"},
			{Key: sgf.KeyWhite, Value: "Bob"},
		})

		// Then: the transcript keeps the game's own values and parses back
		require.NoError(t, err)
		assert.Equal(t, "(;GM[1]FF[4]SZ[19]KM[6.5]PW[Bob]PB[Black]B[pp])", text)
		rec, err := sgf.Parse(text)
		require.NoError(t, err)
		assert.Equal(t, 19, rec.BoardSize())
	})

	t.Run("passes and result are written", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 3, 3)
		_, err := s.Pass()
		require.NoError(t, err)
		_, err = s.Resign()
		require.NoError(t, err)

		assert.Equal(t, "(;GM[1]FF[4]SZ[9]KM[6.5]PW[White]PB[Black]RE[W+R]B[dd]W[])", s.Transcript(nil))
	})
}

func TestSession_Playback(t *testing.T) {
	const transcript = "(;SZ[9]AB[aa];B[ee];W[ge];B[gg])"

	t.Run("loading shows the first move", func(t *testing.T) {
		s := New("test", 19, 6.5)

		rec, err := s.LoadTranscript(transcript)

		require.NoError(t, err)
		assert.Len(t, rec.Moves, 3)
		snap := s.Snapshot()
		assert.Equal(t, flow.SgfPlayback, snap.Phase)
		assert.Equal(t, 9, snap.BoardSize)
		assert.Equal(t, 1, snap.MoveNumber)
		require.NotNil(t, snap.Playback)
		assert.Equal(t, 1, snap.Playback.Cursor)
		assert.Equal(t, 3, snap.Playback.Total)
		assert.Equal(t, []game.Stone{
			{Point: game.Point{Row: 0, Col: 0}, Color: game.Black},
			{Point: game.Point{Row: 4, Col: 4}, Color: game.Black},
		}, snap.Stones)
	})

	t.Run("navigation clamps at both ends", func(t *testing.T) {
		s := New("test", 19, 6.5)
		_, err := s.LoadTranscript(transcript)
		require.NoError(t, err)

		steps := []struct {
			action string
			cursor int
			stones int
		}{
			{"next", 2, 3},
			{"last", 3, 4},
			{"next", 3, 4},
			{"prev", 2, 3},
			{"first", 1, 2},
			{"prev", 0, 1},
			{"prev", 0, 1},
		}
		for _, step := range steps {
			cursor, err := s.Navigate(step.action)
			require.NoError(t, err, step.action)
			assert.Equal(t, step.cursor, cursor, step.action)
			assert.Len(t, s.Snapshot().Stones, step.stones, step.action)
			assert.Equal(t, flow.SgfPlayback, s.Phase())
		}
	})

	t.Run("replay resolves captures", func(t *testing.T) {
		s := New("test", 19, 6.5)
		_, err := s.LoadTranscript("(;SZ[9];B[ba];W[aa];B[ab])")
		require.NoError(t, err)

		_, err = s.Navigate("last")
		require.NoError(t, err)

		snap := s.Snapshot()
		assert.Len(t, snap.Stones, 2)
		assert.Equal(t, []game.Point{{Row: 0, Col: 0}}, snap.LastCaptures)
	})

	t.Run("rejected transcript returns to the menu", func(t *testing.T) {
		s := New("test", 19, 6.5)

		_, err := s.LoadTranscript("(;SZ[abc];B[aa])")

		require.ErrorIs(t, err, sgf.ErrHardFailure)
		assert.Equal(t, flow.MainMenu, s.Phase())
		assert.Empty(t, s.Snapshot().Stones)
		assert.Nil(t, s.Snapshot().Playback)
	})

	t.Run("loading after a finished game", func(t *testing.T) {
		s := newGame(t, 9)
		play(t, s, 3, 3)
		_, err := s.Resign()
		require.NoError(t, err)
		_, err = s.FinishScoring()
		require.NoError(t, err)

		_, err = s.LoadTranscript(transcript)

		require.NoError(t, err)
		assert.Equal(t, flow.SgfPlayback, s.Phase())
		assert.Empty(t, s.History())
	})

	t.Run("rejected transcript after a finished game forgets it", func(t *testing.T) {
		// Given: a finished game with one move and a result
		s := newGame(t, 9)
		play(t, s, 3, 3)
		_, err := s.Resign()
		require.NoError(t, err)
		_, err = s.FinishScoring()
		require.NoError(t, err)

		// When: a broken transcript is loaded
		_, err = s.LoadTranscript("(;SZ[9];B[zz])")

		// Then: the menu shows no trace of the old game
		require.ErrorIs(t, err, sgf.ErrHardFailure)
		snap := s.Snapshot()
		assert.Equal(t, flow.MainMenu, snap.Phase)
		assert.Zero(t, snap.MoveNumber)
		assert.Empty(t, snap.Result)
		assert.Empty(t, snap.LastCaptures)
		assert.Empty(t, s.History())
	})

	t.Run("loading during a game is refused", func(t *testing.T) {
		s := newGame(t, 9)

		_, err := s.LoadTranscript(transcript)

		assert.ErrorIs(t, err, errs.ErrWrongPhase)
		assert.Equal(t, flow.BlackTurn, s.Phase())
	})

	t.Run("unknown action and wrong phase", func(t *testing.T) {
		s := New("test", 19, 6.5)

		_, err := s.Navigate("next")
		assert.ErrorIs(t, err, errs.ErrWrongPhase)

		_, err = s.LoadTranscript(transcript)
		require.NoError(t, err)

		_, err = s.Navigate("rewind")
		assert.ErrorIs(t, err, errs.ErrUnknownNavigation)
	})

	t.Run("exit clears the board", func(t *testing.T) {
		s := New("test", 19, 6.5)
		_, err := s.LoadTranscript(transcript)
		require.NoError(t, err)

		phase, err := s.ExitPlayback()

		require.NoError(t, err)
		assert.Equal(t, flow.MainMenu, phase)
		assert.Empty(t, s.Snapshot().Stones)
		assert.Nil(t, s.Snapshot().Playback)
	})
}
