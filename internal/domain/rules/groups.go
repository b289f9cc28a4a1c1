package rules

import "goban/internal/domain/game"

func onBoard(size int, p game.Point) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// group returns the connected same-colour stones containing start.
// Returns nil when start is empty.
func group(board game.Board, size int, start game.Point) map[game.Point]struct{} {
	color, ok := board[start]
	if !ok {
		return nil
	}

	visited := map[game.Point]struct{}{}
	stack := []game.Point{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[p]; seen {
			continue
		}
		visited[p] = struct{}{}

		for _, n := range p.Neighbors() {
			if !onBoard(size, n) {
				continue
			}
			if _, seen := visited[n]; seen {
				continue
			}
			if board[n] == color {
				stack = append(stack, n)
			}
		}
	}
	return visited
}

// hasLiberty reports whether the group containing start touches an empty
// on-board intersection. The search stops at the first liberty found.
func hasLiberty(board game.Board, size int, start game.Point) bool {
	color, ok := board[start]
	if !ok {
		return false
	}

	visited := map[game.Point]struct{}{start: {}}
	stack := []game.Point{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range p.Neighbors() {
			if !onBoard(size, n) {
				continue
			}
			c, occupied := board[n]
			if !occupied {
				return true
			}
			if c != color {
				continue
			}
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			stack = append(stack, n)
		}
	}
	return false
}

// capturable returns the enemy stones adjacent to p left without liberties,
// assuming the stone at p is already on the board.
func capturable(board game.Board, size int, p game.Point, color game.Color) map[game.Point]struct{} {
	captured := map[game.Point]struct{}{}
	enemy := color.Opponent()
	for _, n := range p.Neighbors() {
		if !onBoard(size, n) || board[n] != enemy {
			continue
		}
		if _, done := captured[n]; done {
			continue
		}
		if hasLiberty(board, size, n) {
			continue
		}
		for stone := range group(board, size, n) {
			captured[stone] = struct{}{}
		}
	}
	return captured
}
