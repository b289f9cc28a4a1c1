package flow

// Phase is the session phase. The set is closed.
type Phase int

const (
	GuiInit Phase = iota
	MainMenu
	GameSetup
	BlackTurn
	WhiteTurn
	MoveValidation
	StonePlacement
	LibertyCheck
	KoCheck
	SgfLoading
	SgfPlaybackInitial
	SgfPlayback
	GameRecording
	ScoreCalculation
	GameOver
)

var phaseNames = [...]string{
	GuiInit:            "gui_init",
	MainMenu:           "main_menu",
	GameSetup:          "game_setup",
	BlackTurn:          "black_turn",
	WhiteTurn:          "white_turn",
	MoveValidation:     "move_validation",
	StonePlacement:     "stone_placement",
	LibertyCheck:       "liberty_check",
	KoCheck:            "ko_check",
	SgfLoading:         "sgf_loading",
	SgfPlaybackInitial: "sgf_playback_initial",
	SgfPlayback:        "sgf_playback",
	GameRecording:      "game_recording",
	ScoreCalculation:   "score_calculation",
	GameOver:           "game_over",
}

// Phases lists every phase in declaration order.
func Phases() []Phase {
	out := make([]Phase, 0, len(phaseNames))
	for p := range phaseNames {
		out = append(out, Phase(p))
	}
	return out
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IsTurn reports whether the phase waits for a player action.
func (p Phase) IsTurn() bool {
	return p == BlackTurn || p == WhiteTurn
}
