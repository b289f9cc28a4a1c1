package errors

import "errors"

var (
	ErrSessionNotFound    = errors.New("session was not found")
	ErrNotPlayersTurn     = errors.New("session is not waiting for a move")
	ErrWrongPhase         = errors.New("action not allowed in the current phase")
	ErrNoMovesToSave      = errors.New("no moves to save")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrUnknownNavigation  = errors.New("unknown navigation action")
	ErrInvalidBoardSize   = errors.New("invalid board size")
	ErrImportDisabled     = errors.New("archive import directory is not configured")
	ErrImportPathOutside  = errors.New("import path is outside the archive import directory")
	ErrInternal           = errors.New("internal error")
)
