package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-grid/internal/model"
)

// PlayRepo provides data access to the plays table.  The table carries a
// unique key on (puzzle_id, user_id) so at most one play exists per
// player and day.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo returns a new PlayRepo bound to the provided database.
func NewPlayRepo(db *sql.DB) *PlayRepo { return &PlayRepo{db: db} }

const playColumns = `id, puzzle_id, user_id, guesses_used, max_guesses, points, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlay(row rowScanner) (model.Play, error) {
	var p model.Play
	err := row.Scan(&p.ID, &p.PuzzleID, &p.UserID, &p.GuessesUsed, &p.MaxGuesses, &p.Points, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Play{}, ErrNotFound
	}
	return p, err
}

// Find returns the play for (puzzleID, userID) or ErrNotFound.
func (r *PlayRepo) Find(ctx context.Context, puzzleID, userID uint64) (model.Play, error) {
	return scanPlay(r.db.QueryRowContext(ctx,
		`SELECT `+playColumns+` FROM plays WHERE puzzle_id = ? AND user_id = ? LIMIT 1`,
		puzzleID, userID))
}

// GetByID returns the play with the given id or ErrNotFound.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (model.Play, error) {
	return scanPlay(r.db.QueryRowContext(ctx,
		`SELECT `+playColumns+` FROM plays WHERE id = ?`, id))
}

// Create inserts a fresh IN_PROGRESS play and returns it.  A unique-key
// violation on (puzzle_id, user_id) is reported as ErrDuplicatePlay.
func (r *PlayRepo) Create(ctx context.Context, puzzleID, userID uint64, maxGuesses int) (model.Play, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plays (puzzle_id, user_id, guesses_used, max_guesses, points, status) VALUES (?, ?, 0, ?, 0, ?)`,
		puzzleID, userID, maxGuesses, model.StatusInProgress)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Play{}, ErrDuplicatePlay
		}
		return model.Play{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Play{}, err
	}
	return model.Play{
		ID:          uint64(id),
		PuzzleID:    puzzleID,
		UserID:      userID,
		GuessesUsed: 0,
		MaxGuesses:  maxGuesses,
		Points:      0,
		Status:      model.StatusInProgress,
	}, nil
}

// LockByIDTx reads a play with SELECT ... FOR UPDATE inside tx, so
// concurrent commits against the same play serialise on the row lock.
func (r *PlayRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Play, error) {
	return scanPlay(tx.QueryRowContext(ctx,
		`SELECT `+playColumns+` FROM plays WHERE id = ? FOR UPDATE`, id))
}

// ConsumeGuessTx increments guesses_used by one and points by delta, but
// only while budget remains.  It returns ErrBudgetExhausted when the
// guarded update matches no row.
func (r *PlayRepo) ConsumeGuessTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE plays SET guesses_used = guesses_used + 1, points = points + ? WHERE id = ? AND guesses_used < max_guesses`,
		delta, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrBudgetExhausted
	}
	return nil
}
