package flow

type transition struct {
	from  Phase
	event Event
}

var transitions = map[transition]Phase{
	{GuiInit, EventGuiReady}: MainMenu,

	{MainMenu, EventNewGame}: GameSetup,
	{MainMenu, EventLoadSgf}: SgfLoading,

	{GameSetup, EventSetupComplete}: BlackTurn,

	{BlackTurn, EventBlackMove}:   MoveValidation,
	{BlackTurn, EventBlackPass}:   WhiteTurn,
	{BlackTurn, EventBothPass}:    ScoreCalculation,
	{BlackTurn, EventBlackResign}: ScoreCalculation,
	{BlackTurn, EventSaveGame}:    GameRecording,

	{WhiteTurn, EventWhiteMove}:   MoveValidation,
	{WhiteTurn, EventWhitePass}:   BlackTurn,
	{WhiteTurn, EventBothPass}:    ScoreCalculation,
	{WhiteTurn, EventWhiteResign}: ScoreCalculation,
	{WhiteTurn, EventSaveGame}:    GameRecording,

	{MoveValidation, EventMoveValid}:        StonePlacement,
	{MoveValidation, EventMoveInvalidBlack}: BlackTurn,
	{MoveValidation, EventMoveInvalidWhite}: WhiteTurn,

	{StonePlacement, EventStonePlaced}: LibertyCheck,

	{LibertyCheck, EventCapturesDone}: KoCheck,

	{KoCheck, EventKoPassedBlack}: WhiteTurn,
	{KoCheck, EventKoPassedWhite}: BlackTurn,
	{KoCheck, EventKoViolation}:   MoveValidation,

	{SgfLoading, EventSgfLoaded}: SgfPlaybackInitial,

	{SgfPlaybackInitial, EventPlaybackStart}: SgfPlayback,

	{SgfPlayback, EventSgfNext}:      SgfPlayback,
	{SgfPlayback, EventSgfPrev}:      SgfPlayback,
	{SgfPlayback, EventSgfFirst}:     SgfPlayback,
	{SgfPlayback, EventSgfLast}:      SgfPlayback,
	{SgfPlayback, EventExitPlayback}: MainMenu,

	{GameRecording, EventGameSavedBlack}: BlackTurn,
	{GameRecording, EventGameSavedWhite}: WhiteTurn,

	{ScoreCalculation, EventScoreCalculated}: GameOver,

	{GameOver, EventReturnToMenu}: MainMenu,
}

// Next is the transition function. Pairs not in the table leave the phase
// unchanged.
func Next(from Phase, event Event) Phase {
	if to, ok := transitions[transition{from, event}]; ok {
		return to
	}
	return from
}

// listed reports whether the table has an entry for the pair.
func listed(from Phase, event Event) bool {
	_, ok := transitions[transition{from, event}]
	return ok
}

// Hook observes phase changes. Enter and Exit run for every listed
// transition, including the playback self-loops; ignored events run neither.
type Hook interface {
	Enter(p Phase)
	Exit(p Phase)
}

// HookFuncs adapts plain functions to Hook. Nil fields are no-ops.
type HookFuncs struct {
	OnEnter func(Phase)
	OnExit  func(Phase)
}

func (h HookFuncs) Enter(p Phase) {
	if h.OnEnter != nil {
		h.OnEnter(p)
	}
}

func (h HookFuncs) Exit(p Phase) {
	if h.OnExit != nil {
		h.OnExit(p)
	}
}

// Machine holds the current phase of one session. It is not safe for
// concurrent use.
type Machine struct {
	current Phase
	hooks   []Hook
}

func NewMachine(hooks ...Hook) *Machine {
	m := &Machine{current: GuiInit, hooks: hooks}
	for _, h := range m.hooks {
		h.Enter(m.current)
	}
	return m
}

func (m *Machine) Current() Phase {
	return m.current
}

// HandleEvent applies one event and returns the resulting phase.
func (m *Machine) HandleEvent(event Event) Phase {
	if !listed(m.current, event) {
		return m.current
	}

	for _, h := range m.hooks {
		h.Exit(m.current)
	}
	m.current = Next(m.current, event)
	for _, h := range m.hooks {
		h.Enter(m.current)
	}
	return m.current
}

// HandleEvents applies events in order and returns the final phase.
func (m *Machine) HandleEvents(events ...Event) Phase {
	for _, e := range events {
		m.HandleEvent(e)
	}
	return m.current
}
