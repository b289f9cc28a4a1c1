package game

import (
	"fmt"
	"strings"
)

type Color int

const (
	Black Color = iota + 1
	White
)

// Opponent returns the other colour.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

// String returns the transcript letter of the colour ("B" or "W").
func (c Color) String() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	default:
		return "?"
	}
}

// Name returns the lower-case colour name used in phase events.
func (c Color) Name() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Point is a board intersection, 0-indexed.
type Point struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Neighbors returns the four orthogonal neighbours, on or off the board.
func (p Point) Neighbors() [4]Point {
	return [4]Point{
		{Row: p.Row, Col: p.Col + 1},
		{Row: p.Row + 1, Col: p.Col},
		{Row: p.Row, Col: p.Col - 1},
		{Row: p.Row - 1, Col: p.Col},
	}
}

// @name Move
type Move struct {
	Color Color `json:"color" bson:"color"`
	Point Point `json:"point" bson:"point"`
	Pass  bool  `json:"pass,omitempty" bson:"pass,omitempty"`
}

func NewMove(color Color, row, col int) Move {
	return Move{Color: color, Point: Point{Row: row, Col: col}}
}

func PassMove(color Color) Move {
	return Move{Color: color, Pass: true}
}

func (m Move) String() string {
	if m.Pass {
		return m.Color.String() + " pass"
	}
	return m.Color.String() + " " + m.Point.String()
}
