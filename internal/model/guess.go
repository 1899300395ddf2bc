package model

// PointsPerCorrectGuess is the fixed reward for a correct guess.
const PointsPerCorrectGuess = 100

// Guess is a committed answer to one cell of a play.  Its identity is
// (PlayID, CellKey); it is never updated or deleted.
//
// Fields:
//
//	PlayID        – guesses.play_id
//	CellKey       – guesses.cell_key, e.g. "r2c3".
//	MovieID       – guesses.tmdb_movie_id
//	PosterPath    – guesses.poster_path, cached for re-render.
//	Correct       – guesses.is_correct
//	PointsAwarded – guesses.points_awarded (100 or 0)
type Guess struct {
	PlayID        uint64 `json:"play_id"`
	CellKey       string `json:"cell_key"`
	MovieID       int64  `json:"tmdb_movie_id"`
	PosterPath    string `json:"poster_path"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
}

// BoardCell is the render state of one position.
type BoardCell struct {
	CellKey    string `json:"cell_key"`
	Filled     bool   `json:"filled"`
	MovieID    int64  `json:"tmdb_movie_id,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
}

// Board lays a ledger out as a 3x3 grid in row-major order.  Guesses for
// unknown cell keys are ignored.
func Board(guesses []Guess) [][]BoardCell {
	byKey := make(map[string]Guess, len(guesses))
	for _, g := range guesses {
		byKey[g.CellKey] = g
	}
	board := make([][]BoardCell, GridSize)
	for r := 1; r <= GridSize; r++ {
		row := make([]BoardCell, GridSize)
		for c := 1; c <= GridSize; c++ {
			key := CellKey(r, c)
			cell := BoardCell{CellKey: key}
			if g, ok := byKey[key]; ok {
				cell.Filled = true
				cell.MovieID = g.MovieID
				cell.PosterPath = g.PosterPath
			}
			row[c-1] = cell
		}
		board[r-1] = row
	}
	return board
}
