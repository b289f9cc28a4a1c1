package rules

import (
	"errors"
	"fmt"
)

type OutcomeKind int

const (
	Valid OutcomeKind = iota
	OutOfBounds
	Occupied
	Suicide
	KoViolation
)

func (k OutcomeKind) String() string {
	switch k {
	case Valid:
		return "valid"
	case OutOfBounds:
		return "out_of_bounds"
	case Occupied:
		return "occupied"
	case Suicide:
		return "suicide"
	case KoViolation:
		return "ko_violation"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of validating a candidate move.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
}

func (o Outcome) OK() bool {
	return o.Kind == Valid
}

var reasons = map[OutcomeKind]string{
	OutOfBounds: "move must be on a board intersection",
	Occupied:    "position already occupied",
	Suicide:     "suicide move not allowed",
	KoViolation: "ko violation: cannot retake immediately",
}

func outcome(kind OutcomeKind) Outcome {
	return Outcome{Kind: kind, Reason: reasons[kind]}
}

var ErrInvalidMove = errors.New("invalid move")

// InvalidMoveError is returned by PlaceStone when the move fails validation.
type InvalidMoveError struct {
	Outcome Outcome
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move: %s", e.Outcome.Reason)
}

func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}
