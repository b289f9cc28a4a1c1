package sgf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"goban/internal/domain/game"
)

// Recognised root properties.
const (
	KeyGame   = "GM"
	KeyFormat = "FF"
	KeySize   = "SZ"
	KeyKomi   = "KM"
	KeyWhite  = "PW"
	KeyBlack  = "PB"
	KeyResult = "RE"
)

const (
	DefaultKomi = "6.5"
	DefaultSize = 19

	defaultGame  = "1"
	defaultFmt   = "4"
	defaultSzStr = "19"
)

// Record is a parsed transcript. It is not modified after Parse returns.
type Record struct {
	Properties  map[string]string `json:"properties"`
	Moves       []game.Move       `json:"moves"`
	Setup       []game.Move       `json:"setup,omitempty"`
	Diagnostics []Diagnostic      `json:"diagnostics,omitempty"`

	size int
}

func (r *Record) BoardSize() int {
	return r.size
}

// Komi returns KM, or 6.5 when the transcript has none.
func (r *Record) Komi() float64 {
	v, ok := r.Properties[KeyKomi]
	if !ok {
		v = DefaultKomi
	}
	komi, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 6.5
	}
	return komi
}

func (r *Record) Property(key string) (string, bool) {
	v, ok := r.Properties[key]
	return v, ok
}

// Advisories returns the diagnostic messages as plain strings.
func (r *Record) Advisories() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.Message)
	}
	return out
}

type DiagnosticKind string

const (
	InvalidBoardSize     DiagnosticKind = "invalid_board_size"
	MoveOutOfBounds      DiagnosticKind = "move_out_of_bounds"
	DuplicateMove        DiagnosticKind = "duplicate_move"
	AlternationBroken    DiagnosticKind = "alternation_broken"
	FirstMoveNotBlack    DiagnosticKind = "first_move_not_black"
	NonStandardBoardSize DiagnosticKind = "non_standard_board_size"
	InvalidKomi          DiagnosticKind = "invalid_komi"
	UnusualKomi          DiagnosticKind = "unusual_komi"
	NotGoGame            DiagnosticKind = "not_go_game"
	SetupOutOfBounds     DiagnosticKind = "setup_out_of_bounds"
)

// Diagnostic describes one problem found while parsing. Fatal diagnostics
// abort the parse; the rest are advisory.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Fatal   bool           `json:"fatal,omitempty"`
	Move    int            `json:"move,omitempty"`
	Message string         `json:"message"`
}

var ErrHardFailure = errors.New("transcript rejected")

// ParseError is returned when a transcript cannot be used at all.
type ParseError struct {
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	msgs := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		if d.Fatal {
			msgs = append(msgs, d.Message)
		}
	}
	return fmt.Sprintf("transcript rejected: %s", strings.Join(msgs, "; "))
}

func (e *ParseError) Is(target error) bool {
	return target == ErrHardFailure
}

// Property is one KEY[value] pair.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Properties is an ordered property list.
type Properties []Property

func (p Properties) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Set replaces the value of key in place or appends it.
func (p *Properties) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

func (p Properties) Keys() []string {
	out := make([]string, 0, len(p))
	for _, prop := range p {
		out = append(out, prop.Key)
	}
	return out
}
