package archive

import (
	"time"

	"goban/internal/domain/sgf"
)

// Game is a finished or imported transcript kept in the archive.
type Game struct {
	ID          string    `json:"id" bson:"_id"`
	Source      string    `json:"source,omitempty" bson:"source,omitempty"`
	BoardSize   int       `json:"board_size" bson:"board_size"`
	Komi        float64   `json:"komi" bson:"komi"`
	PlayerBlack string    `json:"player_black" bson:"player_black"`
	PlayerWhite string    `json:"player_white" bson:"player_white"`
	Result      string    `json:"result,omitempty" bson:"result,omitempty"`
	MoveCount   int       `json:"move_count" bson:"move_count"`
	Transcript  string    `json:"transcript" bson:"transcript"`
	Advisories  []string  `json:"advisories,omitempty" bson:"advisories,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// FromRecord fills the searchable fields of a Game from a parsed transcript.
func FromRecord(source, transcript string, rec *sgf.Record) Game {
	return Game{
		Source:      source,
		BoardSize:   rec.BoardSize(),
		Komi:        rec.Komi(),
		PlayerBlack: rec.Properties[sgf.KeyBlack],
		PlayerWhite: rec.Properties[sgf.KeyWhite],
		Result:      rec.Properties[sgf.KeyResult],
		MoveCount:   len(rec.Moves),
		Transcript:  transcript,
		Advisories:  rec.Advisories(),
	}
}

type Page struct {
	PageNum    int    `json:"page_num"`
	TotalPages int    `json:"total_pages"`
	Total      int64  `json:"total"`
	Games      []Game `json:"games"`
}

// ImportReport summarises one directory import.
type ImportReport struct {
	Imported int               `json:"imported"`
	Skipped  map[string]string `json:"skipped,omitempty"`
}
