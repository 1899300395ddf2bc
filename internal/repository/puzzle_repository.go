package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-grid/internal/model"
)

// PuzzleRepo reads published puzzles.  Puzzles are written by an external
// authoring process; nothing here mutates them.
type PuzzleRepo struct {
	db *sql.DB
}

// NewPuzzleRepo returns a new PuzzleRepo bound to the provided database.
func NewPuzzleRepo(db *sql.DB) *PuzzleRepo { return &PuzzleRepo{db: db} }

const puzzleColumns = `id, DATE_FORMAT(puzzle_date, '%Y-%m-%d'), title, row_clues, col_clues`

// FindPublishedByDate returns the published puzzle for day (YYYY-MM-DD).
// It returns ErrNotFound when no published puzzle exists for that day.
func (r *PuzzleRepo) FindPublishedByDate(ctx context.Context, day string) (model.Puzzle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE puzzle_date = ? AND is_published = 1 LIMIT 1`,
		day)
	return scanPuzzle(row)
}

// GetByID returns a puzzle regardless of its publication flag, so plays
// created against it keep resolving their row actors.
func (r *PuzzleRepo) GetByID(ctx context.Context, id uint64) (model.Puzzle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`, id)
	return scanPuzzle(row)
}

func scanPuzzle(row *sql.Row) (model.Puzzle, error) {
	var (
		p        model.Puzzle
		title    sql.NullString
		rowClues []byte
		colClues []byte
	)
	if err := row.Scan(&p.ID, &p.PuzzleDate, &title, &rowClues, &colClues); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Puzzle{}, ErrNotFound
		}
		return model.Puzzle{}, err
	}
	if title.Valid {
		t := title.String
		p.Title = &t
	}
	rows, cols, err := model.DecodeClues(rowClues, colClues)
	if err != nil {
		return model.Puzzle{}, err
	}
	p.RowClues = rows
	p.ColClues = cols
	return p, nil
}
