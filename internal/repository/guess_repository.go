package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-grid/internal/model"
)

// GuessRepo provides data access to the guesses table.  A unique key on
// (play_id, cell_key) closes a cell permanently once it holds a guess.
type GuessRepo struct {
	db *sql.DB
}

// NewGuessRepo returns a new GuessRepo bound to the provided database.
func NewGuessRepo(db *sql.DB) *GuessRepo { return &GuessRepo{db: db} }

// ListByPlay returns every guess recorded for the play.  Order is not
// significant to callers.
func (r *GuessRepo) ListByPlay(ctx context.Context, playID uint64) ([]model.Guess, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT play_id, cell_key, tmdb_movie_id, poster_path, is_correct, points_awarded
		 FROM guesses WHERE play_id = ?`, playID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Guess{}
	for rows.Next() {
		var g model.Guess
		if err := rows.Scan(&g.PlayID, &g.CellKey, &g.MovieID, &g.PosterPath, &g.Correct, &g.PointsAwarded); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether the cell already holds a guess for the play.
func (r *GuessRepo) Exists(ctx context.Context, playID uint64, cellKey string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM guesses WHERE play_id = ? AND cell_key = ? LIMIT 1`,
		playID, cellKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a guess within the provided transaction.  A unique-key
// violation on (play_id, cell_key) is reported as ErrCellTaken.  The
// caller must commit or roll back the transaction.
func (r *GuessRepo) CreateTx(ctx context.Context, tx *sql.Tx, g model.Guess) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO guesses (play_id, cell_key, tmdb_movie_id, poster_path, is_correct, points_awarded)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.PlayID, g.CellKey, g.MovieID, g.PosterPath, g.Correct, g.PointsAwarded)
	if err != nil && isDuplicateKey(err) {
		return ErrCellTaken
	}
	return err
}
