package sgf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"goban/internal/domain/game"
)

var (
	moveRe  = regexp.MustCompile(`([BW])\[([a-z]{0,2})\]`)
	setupRe = regexp.MustCompile(`A([BW])((?:\[[a-z]{2}\])+)`)

	propKeys = []string{KeyGame, KeyFormat, KeySize, KeyKomi, KeyWhite, KeyBlack, KeyResult}
	propRes  = func() map[string]*regexp.Regexp {
		out := make(map[string]*regexp.Regexp, len(propKeys))
		for _, key := range propKeys {
			out[key] = regexp.MustCompile(`(?:^|[^A-Z])` + key + `\[([^\]]+)\]`)
		}
		return out
	}()
)

// Parse reads a transcript.
//
// A non-numeric board size or a move outside the board rejects the whole
// transcript with a *ParseError. Everything else (repeated points, broken
// colour alternation, odd komi or board size) is reported in
// Record.Diagnostics and parsing continues with a best-effort result.
func Parse(text string) (*Record, error) {
	p := &parser{props: extractProperties(text)}

	if !p.checkProperties() {
		return nil, &ParseError{Diagnostics: p.diags}
	}

	moves := extractMoves(text)
	if !p.checkMoves(moves) {
		return nil, &ParseError{Diagnostics: p.diags}
	}
	p.checkAlternation()
	p.checkSetup(extractSetup(text))

	return &Record{
		Properties:  p.props,
		Moves:       p.moves,
		Setup:       p.setup,
		Diagnostics: p.diags,
		size:        p.size,
	}, nil
}

type parser struct {
	props map[string]string
	size  int
	moves []game.Move
	setup []game.Move
	diags []Diagnostic
}

func (p *parser) advise(kind DiagnosticKind, move int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Kind: kind, Move: move, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) fail(kind DiagnosticKind, move int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Kind: kind, Fatal: true, Move: move, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) checkProperties() bool {
	if _, ok := p.props[KeyGame]; !ok {
		p.props[KeyGame] = defaultGame
	}
	if _, ok := p.props[KeyFormat]; !ok {
		p.props[KeyFormat] = defaultFmt
	}
	if _, ok := p.props[KeySize]; !ok {
		p.props[KeySize] = defaultSzStr
	}

	if gm := p.props[KeyGame]; gm != defaultGame {
		p.advise(NotGoGame, 0, "game type is %s, expected 1 for Go", gm)
	}

	size, err := strconv.Atoi(strings.TrimSpace(p.props[KeySize]))
	if err != nil {
		p.fail(InvalidBoardSize, 0, "invalid board size format: %q", p.props[KeySize])
		return false
	}
	if size < 1 {
		p.fail(InvalidBoardSize, 0, "board size must be positive, got %d", size)
		return false
	}
	p.size = size
	if size != 9 && size != 13 && size != 19 {
		p.advise(NonStandardBoardSize, 0, "non-standard board size: %d", size)
	}

	if km, ok := p.props[KeyKomi]; ok {
		komi, err := strconv.ParseFloat(strings.TrimSpace(km), 64)
		switch {
		case err != nil || math.IsNaN(komi):
			p.advise(InvalidKomi, 0, "invalid komi %q, using %s", km, DefaultKomi)
			p.props[KeyKomi] = DefaultKomi
		case komi < 0 || komi > 100:
			p.advise(UnusualKomi, 0, "unusual komi value: %g", komi)
		}
	}
	return true
}

func (p *parser) checkMoves(moves []game.Move) bool {
	occupied := make(map[game.Point]struct{}, len(moves))
	for i, m := range moves {
		if !p.onBoard(m.Point) {
			p.fail(MoveOutOfBounds, i+1, "move %d: invalid coordinates (%d, %d) for board size %d",
				i+1, m.Point.Row, m.Point.Col, p.size)
			return false
		}

		if _, dup := occupied[m.Point]; dup {
			p.advise(DuplicateMove, i+1, "move %d: duplicate move at (%d, %d), skipped",
				i+1, m.Point.Row, m.Point.Col)
			continue
		}
		occupied[m.Point] = struct{}{}
		p.moves = append(p.moves, m)
	}
	return true
}

func (p *parser) checkAlternation() {
	if len(p.moves) == 0 {
		return
	}
	if p.moves[0].Color != game.Black {
		p.advise(FirstMoveNotBlack, 1, "first move must be black")
	}
	for i := 1; i < len(p.moves); i++ {
		if p.moves[i].Color == p.moves[i-1].Color {
			p.advise(AlternationBroken, i+1, "consecutive %s moves at positions %d and %d",
				p.moves[i].Color, i, i+1)
		}
	}
}

func (p *parser) checkSetup(stones []game.Move) {
	for _, s := range stones {
		if !p.onBoard(s.Point) {
			p.advise(SetupOutOfBounds, 0, "setup stone %s outside board, skipped", s)
			continue
		}
		p.setup = append(p.setup, s)
	}
}

func (p *parser) onBoard(pt game.Point) bool {
	return pt.Row >= 0 && pt.Row < p.size && pt.Col >= 0 && pt.Col < p.size
}

func extractProperties(text string) map[string]string {
	props := make(map[string]string, len(propKeys))
	for _, key := range propKeys {
		if m := propRes[key].FindStringSubmatch(text); m != nil {
			props[key] = m[1]
		}
	}
	return props
}

// extractMoves returns placements in document order. Passes are dropped.
// A B or W directly preceded by another capital letter is part of a longer
// property name such as PB and is not a move.
func extractMoves(text string) []game.Move {
	var moves []game.Move
	for _, loc := range moveRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > 0 && isUpper(text[loc[0]-1]) {
			continue
		}
		coord := text[loc[4]:loc[5]]
		if coord == "" {
			continue
		}
		color := game.Black
		if text[loc[2]] == 'W' {
			color = game.White
		}
		moves = append(moves, game.Move{Color: color, Point: DecodePoint(coord)})
	}
	return moves
}

func extractSetup(text string) []game.Move {
	var stones []game.Move
	for _, loc := range setupRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > 0 && isUpper(text[loc[0]-1]) {
			continue
		}
		color := game.Black
		if text[loc[2]] == 'W' {
			color = game.White
		}
		values := strings.Split(strings.Trim(text[loc[4]:loc[5]], "[]"), "][")
		for _, v := range values {
			stones = append(stones, game.Move{Color: color, Point: DecodePoint(v)})
		}
	}
	return stones
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
