package sgf

import (
	"fmt"
	"sort"

	"goban/internal/domain/game"
)

// DecodePoint converts a transcript coordinate. Two letters give column
// then row. A single letter gives row 0 and that column; this matches old
// recorders and is kept as is.
func DecodePoint(coord string) game.Point {
	if len(coord) == 1 {
		return game.Point{Row: 0, Col: int(coord[0]) - 'a'}
	}
	return game.Point{Row: int(coord[1]) - 'a', Col: int(coord[0]) - 'a'}
}

// EncodePoint writes column letter then row letter.
func EncodePoint(p game.Point) string {
	return string([]byte{byte('a' + p.Col), byte('a' + p.Row)})
}

// HumanPoint renders a point in board notation (letters skip I, rows count
// from the bottom), e.g. Q16 for (3,15) on 19x19.
func HumanPoint(p game.Point, size int) (string, error) {
	if p.Row < 0 || p.Row >= size || p.Col < 0 || p.Col >= size || size > 25 {
		return "", fmt.Errorf("point %s outside %dx%d board", p, size, size)
	}
	col := byte('A' + p.Col)
	if col >= 'I' {
		col++
	}
	return fmt.Sprintf("%c%d", col, size-p.Row), nil
}

// PropertiesFromMap converts a map to Properties sorted by key.
func PropertiesFromMap(m map[string]string) Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Properties, 0, len(keys))
	for _, k := range keys {
		out = append(out, Property{Key: k, Value: m[k]})
	}
	return out
}
