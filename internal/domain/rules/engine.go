package rules

import (
	"goban/internal/domain/game"
)

// Engine owns a board, validates moves against it and resolves captures.
//
// Ko is tracked through a single point: the last stone placed. A move that
// captures exactly one stone sitting on that point is rejected. This is
// narrower than positional superko and is kept that way on purpose.
type Engine struct {
	size  int
	board game.Board
	ko    *game.Point
}

func New(size int) *Engine {
	return &Engine{
		size:  size,
		board: game.Board{},
	}
}

func (e *Engine) Size() int {
	return e.size
}

// KoPoint returns the last placed point, if any.
func (e *Engine) KoPoint() (game.Point, bool) {
	if e.ko == nil {
		return game.Point{}, false
	}
	return *e.ko, true
}

// ValidateMove checks bounds, occupancy, suicide and ko in that order and
// never mutates the engine.
func (e *Engine) ValidateMove(color game.Color, p game.Point) Outcome {
	if !onBoard(e.size, p) {
		return outcome(OutOfBounds)
	}

	if _, ok := e.board[p]; ok {
		return outcome(Occupied)
	}

	scratch := e.board.Clone()
	scratch[p] = color
	captured := capturable(scratch, e.size, p, color)

	if !hasLiberty(scratch, e.size, p) && len(captured) == 0 {
		return outcome(Suicide)
	}

	if e.ko != nil && len(captured) == 1 {
		if _, ok := captured[*e.ko]; ok {
			return outcome(KoViolation)
		}
	}

	return outcome(Valid)
}

// PlaceStone validates and commits a move, returning the captured points.
func (e *Engine) PlaceStone(color game.Color, p game.Point) ([]game.Point, error) {
	if res := e.ValidateMove(color, p); !res.OK() {
		return nil, &InvalidMoveError{Outcome: res}
	}
	return e.commit(color, p), nil
}

// ReplayStone commits a move without validation. Used when replaying a
// recorded game whose moves are taken as already legal.
func (e *Engine) ReplayStone(color game.Color, p game.Point) []game.Point {
	return e.commit(color, p)
}

func (e *Engine) commit(color game.Color, p game.Point) []game.Point {
	e.board[p] = color

	captured := capturable(e.board, e.size, p, color)
	points := make([]game.Point, 0, len(captured))
	for stone := range captured {
		delete(e.board, stone)
		points = append(points, stone)
	}

	played := p
	e.ko = &played

	return game.SortPoints(points)
}

// BoardState returns a copy of the board.
func (e *Engine) BoardState() game.Board {
	return e.board.Clone()
}

func (e *Engine) ClearBoard() {
	e.board = game.Board{}
	e.ko = nil
}
