package game

import "sort"

// Board maps occupied points to the colour of the stone on them.
// Empty intersections are never stored.
type Board map[Point]Color

func (b Board) Clone() Board {
	out := make(Board, len(b))
	for p, c := range b {
		out[p] = c
	}
	return out
}

func (b Board) At(p Point) (Color, bool) {
	c, ok := b[p]
	return c, ok
}

// Stones returns the occupied points in row-major order.
func (b Board) Stones() []Stone {
	out := make([]Stone, 0, len(b))
	for p, c := range b {
		out = append(out, Stone{Point: p, Color: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Point.Row != out[j].Point.Row {
			return out[i].Point.Row < out[j].Point.Row
		}
		return out[i].Point.Col < out[j].Point.Col
	})
	return out
}

type Stone struct {
	Point Point `json:"point" bson:"point"`
	Color Color `json:"color" bson:"color"`
}

// SortPoints orders points row-major in place and returns them.
func SortPoints(points []Point) []Point {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Row != points[j].Row {
			return points[i].Row < points[j].Row
		}
		return points[i].Col < points[j].Col
	})
	return points
}
