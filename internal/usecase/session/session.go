package session

import (
	"fmt"
	"strconv"

	"goban/internal/domain/flow"
	"goban/internal/domain/game"
	"goban/internal/domain/rules"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
)

const maxBoardSize = 25

// Session ties one rules engine to one phase machine. The engine and the
// machine never talk to each other; every state change goes through here.
// A Session is not safe for concurrent use.
type Session struct {
	id      string
	hooks   []flow.Hook
	engine  *rules.Engine
	machine *flow.Machine

	komi     float64
	history  []game.Move
	captured []game.Point
	result   string

	record *sgf.Record
	cursor int
}

// New returns a session waiting in the main menu.
func New(id string, size int, komi float64, hooks ...flow.Hook) *Session {
	s := &Session{
		id:     id,
		hooks:  hooks,
		engine: rules.New(size),
		komi:   komi,
	}
	s.resetMachine()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Phase() flow.Phase {
	return s.machine.Current()
}

func (s *Session) History() []game.Move {
	out := make([]game.Move, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) resetMachine() {
	s.machine = flow.NewMachine(s.hooks...)
	s.machine.HandleEvent(flow.EventGuiReady)
}

// StartNewGame clears everything and leaves the session on black's turn.
func (s *Session) StartNewGame(size int, komi float64) error {
	if size < 1 || size > maxBoardSize {
		return fmt.Errorf("%w: %d", errs.ErrInvalidBoardSize, size)
	}

	s.engine = rules.New(size)
	s.komi = komi
	s.history = nil
	s.captured = nil
	s.result = ""
	s.record = nil
	s.cursor = 0

	s.resetMachine()
	s.machine.HandleEvents(flow.EventNewGame, flow.EventSetupComplete)
	return nil
}

func (s *Session) toMove() (game.Color, error) {
	switch s.machine.Current() {
	case flow.BlackTurn:
		return game.Black, nil
	case flow.WhiteTurn:
		return game.White, nil
	}
	return 0, errs.ErrNotPlayersTurn
}

func (s *Session) expect(phases ...flow.Phase) error {
	current := s.machine.Current()
	for _, p := range phases {
		if current == p {
			return nil
		}
	}
	return fmt.Errorf("%w: session is in %s", errs.ErrWrongPhase, current)
}

type MoveResult struct {
	Move       game.Move     `json:"move"`
	Outcome    rules.Outcome `json:"outcome"`
	Captured   []game.Point  `json:"captured,omitempty"`
	MoveNumber int           `json:"move_number"`
}

// PlayMove places a stone for the side to move. A rejected move leaves the
// board and the turn unchanged and returns a *rules.InvalidMoveError along
// with the outcome.
func (s *Session) PlayMove(p game.Point) (MoveResult, error) {
	color, err := s.toMove()
	if err != nil {
		return MoveResult{}, err
	}

	move := game.Move{Color: color, Point: p}
	outcome := s.engine.ValidateMove(color, p)
	if !outcome.OK() {
		s.machine.HandleEvents(flow.MoveEvent(color), flow.InvalidEvent(color))
		return MoveResult{Move: move, Outcome: outcome, MoveNumber: len(s.history)}, &rules.InvalidMoveError{Outcome: outcome}
	}

	captured, err := s.engine.PlaceStone(color, p)
	if err != nil {
		return MoveResult{}, err
	}

	s.history = append(s.history, move)
	s.captured = captured
	s.machine.HandleEvents(flow.MoveChain(color)...)

	return MoveResult{
		Move:       move,
		Outcome:    outcome,
		Captured:   captured,
		MoveNumber: len(s.history),
	}, nil
}

// Pass records a pass. A pass answering a pass ends the game.
func (s *Session) Pass() (flow.Phase, error) {
	color, err := s.toMove()
	if err != nil {
		return s.machine.Current(), err
	}

	event := flow.PassEvent(color)
	if n := len(s.history); n > 0 && s.history[n-1].Pass {
		event = flow.EventBothPass
	}

	s.history = append(s.history, game.PassMove(color))
	s.captured = nil
	return s.machine.HandleEvent(event), nil
}

func (s *Session) Resign() (flow.Phase, error) {
	color, err := s.toMove()
	if err != nil {
		return s.machine.Current(), err
	}

	s.result = color.Opponent().String() + "+R"
	return s.machine.HandleEvent(flow.ResignEvent(color)), nil
}

// FinishScoring closes a game waiting in score calculation. Counting is not
// done here; a resignation result is kept as is.
func (s *Session) FinishScoring() (flow.Phase, error) {
	if err := s.expect(flow.ScoreCalculation); err != nil {
		return s.machine.Current(), err
	}
	return s.machine.HandleEvent(flow.EventScoreCalculated), nil
}

func (s *Session) ReturnToMenu() (flow.Phase, error) {
	if err := s.expect(flow.GameOver); err != nil {
		return s.machine.Current(), err
	}
	return s.machine.HandleEvent(flow.EventReturnToMenu), nil
}

// Properties returns the root properties written for this game: size, komi
// and result, followed by extra in the order given. Size and komi always
// come from the game.
func (s *Session) Properties(extra sgf.Properties) sgf.Properties {
	props := sgf.Properties{
		{Key: sgf.KeySize, Value: strconv.Itoa(s.engine.Size())},
		{Key: sgf.KeyKomi, Value: strconv.FormatFloat(s.komi, 'f', -1, 64)},
	}
	if s.result != "" {
		props = append(props, sgf.Property{Key: sgf.KeyResult, Value: s.result})
	}
	for _, p := range extra {
		if p.Key == sgf.KeySize || p.Key == sgf.KeyKomi {
			continue
		}
		props.Set(p.Key, p.Value)
	}
	return props
}

// Transcript serializes the move history without touching the phase.
func (s *Session) Transcript(extra sgf.Properties) string {
	return sgf.Serialize(s.history, s.Properties(extra))
}

// Save serializes the game from within a turn and returns to the same turn.
func (s *Session) Save(extra sgf.Properties) (string, error) {
	color, err := s.toMove()
	if err != nil {
		return "", err
	}
	if len(s.history) == 0 {
		return "", errs.ErrNoMovesToSave
	}

	s.machine.HandleEvent(flow.EventSaveGame)
	text := s.Transcript(extra)
	s.machine.HandleEvent(flow.SavedEvent(color))
	return text, nil
}

// LoadTranscript parses text and enters playback with the first move shown.
// A rejected transcript leaves the session in the main menu with an empty
// board and returns the *sgf.ParseError.
func (s *Session) LoadTranscript(text string) (*sgf.Record, error) {
	switch s.machine.Current() {
	case flow.GameOver:
		s.machine.HandleEvent(flow.EventReturnToMenu)
	case flow.SgfPlayback:
		s.machine.HandleEvent(flow.EventExitPlayback)
	}
	if err := s.expect(flow.MainMenu); err != nil {
		return nil, err
	}

	s.machine.HandleEvent(flow.EventLoadSgf)

	rec, err := sgf.Parse(text)
	if err != nil {
		s.engine.ClearBoard()
		s.history = nil
		s.captured = nil
		s.result = ""
		s.record = nil
		s.cursor = 0
		s.resetMachine()
		return nil, err
	}

	s.engine = rules.New(rec.BoardSize())
	s.komi = rec.Komi()
	s.history = nil
	s.result = rec.Properties[sgf.KeyResult]
	s.record = rec
	s.cursor = 0
	if len(rec.Moves) > 0 {
		s.cursor = 1
	}
	s.replay()

	s.machine.HandleEvents(flow.EventSgfLoaded, flow.EventPlaybackStart)
	return rec, nil
}

// Navigate moves the playback cursor. first shows the first move, last
// shows every move; prev and next stop at the ends.
func (s *Session) Navigate(action string) (int, error) {
	if err := s.expect(flow.SgfPlayback); err != nil {
		return s.cursor, err
	}
	event, ok := flow.NavigationEvent(action)
	if !ok {
		return s.cursor, fmt.Errorf("%w: %q", errs.ErrUnknownNavigation, action)
	}

	total := len(s.record.Moves)
	if total > 0 {
		switch event {
		case flow.EventSgfFirst:
			s.cursor = 1
		case flow.EventSgfPrev:
			if s.cursor > 0 {
				s.cursor--
			}
		case flow.EventSgfNext:
			if s.cursor < total {
				s.cursor++
			}
		case flow.EventSgfLast:
			s.cursor = total
		}
		s.replay()
	}

	s.machine.HandleEvent(event)
	return s.cursor, nil
}

func (s *Session) ExitPlayback() (flow.Phase, error) {
	if err := s.expect(flow.SgfPlayback); err != nil {
		return s.machine.Current(), err
	}

	s.engine.ClearBoard()
	s.record = nil
	s.cursor = 0
	s.captured = nil
	s.result = ""
	return s.machine.HandleEvent(flow.EventExitPlayback), nil
}

// replay rebuilds the board from the setup stones and the first cursor moves.
func (s *Session) replay() {
	s.engine.ClearBoard()
	s.captured = nil
	if s.record == nil {
		return
	}

	for _, stone := range s.record.Setup {
		s.engine.ReplayStone(stone.Color, stone.Point)
	}
	for _, m := range s.record.Moves[:s.cursor] {
		s.captured = s.engine.ReplayStone(m.Color, m.Point)
	}
}

type Playback struct {
	Cursor      int               `json:"cursor"`
	Total       int               `json:"total"`
	Properties  map[string]string `json:"properties"`
	Diagnostics []sgf.Diagnostic  `json:"diagnostics,omitempty"`
}

// Snapshot is what the renderer draws.
type Snapshot struct {
	ID           string       `json:"id"`
	Phase        flow.Phase   `json:"phase"`
	BoardSize    int          `json:"board_size"`
	Komi         float64      `json:"komi"`
	Stones       []game.Stone `json:"stones"`
	ToMove       game.Color   `json:"to_move,omitempty"`
	MoveNumber   int          `json:"move_number"`
	KoPoint      *game.Point  `json:"ko_point,omitempty"`
	LastCaptures []game.Point `json:"last_captures,omitempty"`
	Result       string       `json:"result,omitempty"`
	Playback     *Playback    `json:"playback,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		Phase:        s.machine.Current(),
		BoardSize:    s.engine.Size(),
		Komi:         s.komi,
		Stones:       s.engine.BoardState().Stones(),
		MoveNumber:   len(s.history),
		LastCaptures: s.captured,
		Result:       s.result,
	}
	if color, err := s.toMove(); err == nil {
		snap.ToMove = color
	}
	if ko, ok := s.engine.KoPoint(); ok {
		snap.KoPoint = &ko
	}
	if s.record != nil {
		snap.MoveNumber = s.cursor
		snap.Playback = &Playback{
			Cursor:      s.cursor,
			Total:       len(s.record.Moves),
			Properties:  s.record.Properties,
			Diagnostics: s.record.Diagnostics,
		}
	}
	return snap
}
