package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GridSize is the number of rows and the number of columns on a board.
const GridSize = 3

// ErrMalformedPuzzle is returned when stored clue payloads do not decode
// into exactly GridSize row clues (each bound to an actor) and GridSize
// column clues.
var ErrMalformedPuzzle = errors.New("malformed puzzle")

// ErrInvalidCellKey is returned by ParseCellKey for keys outside the board.
var ErrInvalidCellKey = errors.New("invalid cell key")

// RowClue keys a row by an actor.  ActorID is the actor's identifier in
// the external movie catalog (TMDB person id).
type RowClue struct {
	Name    string `json:"name"`
	ActorID int64  `json:"actor_id"`
}

// ColumnClue keys a column by a theme.  The theme is never checked by
// the engine; it is judged when the puzzle is authored.
type ColumnClue struct {
	Name string `json:"name"`
}

// Puzzle is one day's published 3x3 board.
//
// Fields:
//
//	ID         – puzzles.id
//	PuzzleDate – publication day, YYYY-MM-DD in the reference timezone.
//	Title      – optional display title.
//	RowClues   – actor-bound row clues, top to bottom.
//	ColClues   – themed column clues, left to right.
type Puzzle struct {
	ID         uint64               `json:"id"`
	PuzzleDate string               `json:"puzzle_date"`
	Title      *string              `json:"title,omitempty"`
	RowClues   [GridSize]RowClue    `json:"row_clues"`
	ColClues   [GridSize]ColumnClue `json:"col_clues"`
}

// RowActor returns the actor bound to the given 1-based row.
func (p Puzzle) RowActor(row int) (int64, bool) {
	if row < 1 || row > GridSize {
		return 0, false
	}
	return p.RowClues[row-1].ActorID, true
}

// DecodeClues parses the JSON payloads stored in puzzles.row_clues and
// puzzles.col_clues.  Shapes that are not exactly GridSize entries, rows
// without a positive actor id, or clues without a name are rejected.
func DecodeClues(rowJSON, colJSON []byte) ([GridSize]RowClue, [GridSize]ColumnClue, error) {
	var rows [GridSize]RowClue
	var cols [GridSize]ColumnClue

	var rawRows []RowClue
	if err := json.Unmarshal(rowJSON, &rawRows); err != nil {
		return rows, cols, fmt.Errorf("%w: row clues: %v", ErrMalformedPuzzle, err)
	}
	var rawCols []ColumnClue
	if err := json.Unmarshal(colJSON, &rawCols); err != nil {
		return rows, cols, fmt.Errorf("%w: column clues: %v", ErrMalformedPuzzle, err)
	}
	if len(rawRows) != GridSize || len(rawCols) != GridSize {
		return rows, cols, fmt.Errorf("%w: want %d rows and %d columns, got %d and %d",
			ErrMalformedPuzzle, GridSize, GridSize, len(rawRows), len(rawCols))
	}
	for i, r := range rawRows {
		if strings.TrimSpace(r.Name) == "" || r.ActorID <= 0 {
			return rows, cols, fmt.Errorf("%w: row %d", ErrMalformedPuzzle, i+1)
		}
		rows[i] = r
	}
	for i, c := range rawCols {
		if strings.TrimSpace(c.Name) == "" {
			return rows, cols, fmt.Errorf("%w: column %d", ErrMalformedPuzzle, i+1)
		}
		cols[i] = c
	}
	return rows, cols, nil
}

// CellKey builds the key for a 1-based row and column, e.g. "r1c3".
func CellKey(row, col int) string {
	return "r" + strconv.Itoa(row) + "c" + strconv.Itoa(col)
}

// ParseCellKey is the inverse of CellKey.  Only keys addressing one of the
// nine board positions are accepted.
func ParseCellKey(key string) (row, col int, err error) {
	rest, ok := strings.CutPrefix(key, "r")
	if !ok {
		return 0, 0, ErrInvalidCellKey
	}
	rs, cs, ok := strings.Cut(rest, "c")
	if !ok {
		return 0, 0, ErrInvalidCellKey
	}
	row, err = strconv.Atoi(rs)
	if err != nil || row < 1 || row > GridSize || len(rs) != 1 {
		return 0, 0, ErrInvalidCellKey
	}
	col, err = strconv.Atoi(cs)
	if err != nil || col < 1 || col > GridSize || len(cs) != 1 {
		return 0, 0, ErrInvalidCellKey
	}
	return row, col, nil
}

// AllCellKeys lists the nine keys in row-major order.
func AllCellKeys() []string {
	keys := make([]string, 0, GridSize*GridSize)
	for r := 1; r <= GridSize; r++ {
		for c := 1; c <= GridSize; c++ {
			keys = append(keys, CellKey(r, c))
		}
	}
	return keys
}
