package flow

import "goban/internal/domain/game"

type Event string

const (
	EventGuiReady      Event = "gui_ready"
	EventNewGame       Event = "new_game"
	EventLoadSgf       Event = "load_sgf"
	EventSetupComplete Event = "setup_complete"

	EventBlackMove   Event = "black_move"
	EventBlackPass   Event = "black_pass"
	EventBlackResign Event = "black_resign"
	EventWhiteMove   Event = "white_move"
	EventWhitePass   Event = "white_pass"
	EventWhiteResign Event = "white_resign"
	EventBothPass    Event = "both_pass"
	EventSaveGame    Event = "save_game"

	EventMoveValid        Event = "move_valid"
	EventMoveInvalidBlack Event = "move_invalid_black"
	EventMoveInvalidWhite Event = "move_invalid_white"
	EventStonePlaced      Event = "stone_placed"
	EventCapturesDone     Event = "captures_processed"
	EventKoPassedBlack    Event = "ko_passed_black"
	EventKoPassedWhite    Event = "ko_passed_white"
	EventKoViolation      Event = "ko_violation"

	EventSgfLoaded     Event = "sgf_loaded"
	EventPlaybackStart Event = "playback_start"
	EventSgfNext       Event = "sgf_next"
	EventSgfPrev       Event = "sgf_prev"
	EventSgfFirst      Event = "sgf_first"
	EventSgfLast       Event = "sgf_last"
	EventExitPlayback  Event = "exit_playback"

	EventGameSavedBlack  Event = "game_saved_black"
	EventGameSavedWhite  Event = "game_saved_white"
	EventScoreCalculated Event = "score_calculated"
	EventReturnToMenu    Event = "return_to_menu"
)

// MoveChain returns the events pushed for one accepted move, in order.
func MoveChain(c game.Color) []Event {
	if c == game.White {
		return []Event{EventWhiteMove, EventMoveValid, EventStonePlaced, EventCapturesDone, EventKoPassedWhite}
	}
	return []Event{EventBlackMove, EventMoveValid, EventStonePlaced, EventCapturesDone, EventKoPassedBlack}
}

func MoveEvent(c game.Color) Event {
	return pick(c, EventBlackMove, EventWhiteMove)
}

func PassEvent(c game.Color) Event {
	return pick(c, EventBlackPass, EventWhitePass)
}

func ResignEvent(c game.Color) Event {
	return pick(c, EventBlackResign, EventWhiteResign)
}

func InvalidEvent(c game.Color) Event {
	return pick(c, EventMoveInvalidBlack, EventMoveInvalidWhite)
}

func SavedEvent(c game.Color) Event {
	return pick(c, EventGameSavedBlack, EventGameSavedWhite)
}

// NavigationEvent maps a playback action name (first, prev, next, last).
func NavigationEvent(action string) (Event, bool) {
	switch action {
	case "first":
		return EventSgfFirst, true
	case "prev":
		return EventSgfPrev, true
	case "next":
		return EventSgfNext, true
	case "last":
		return EventSgfLast, true
	}
	return "", false
}

func pick(c game.Color, black, white Event) Event {
	if c == game.White {
		return white
	}
	return black
}
