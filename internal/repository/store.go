package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/movie-grid/internal/model"
)

// GuessRecord is the input to an atomic guess commit.
type GuessRecord struct {
	PlayID      uint64
	CellKey     string
	MovieID     int64
	PosterPath  string
	Correct     bool
	PointsDelta int
}

// Guess converts the record into the ledger row it produces.
func (g GuessRecord) Guess() model.Guess {
	return model.Guess{
		PlayID:        g.PlayID,
		CellKey:       g.CellKey,
		MovieID:       g.MovieID,
		PosterPath:    g.PosterPath,
		Correct:       g.Correct,
		PointsAwarded: g.PointsDelta,
	}
}

// MySQLStore groups the puzzle, play and guess repositories behind the
// narrow storage contract consumed by the game engine.
type MySQLStore struct {
	db      *sql.DB
	Puzzles *PuzzleRepo
	Plays   *PlayRepo
	Guesses *GuessRepo
}

// NewMySQLStore builds the repositories on top of db.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:      db,
		Puzzles: NewPuzzleRepo(db),
		Plays:   NewPlayRepo(db),
		Guesses: NewGuessRepo(db),
	}
}

// DB exposes the underlying sql.DB.
func (s *MySQLStore) DB() *sql.DB { return s.db }

func (s *MySQLStore) FindPuzzleByDate(ctx context.Context, day string) (model.Puzzle, error) {
	return s.Puzzles.FindPublishedByDate(ctx, day)
}

func (s *MySQLStore) FindPuzzleByID(ctx context.Context, id uint64) (model.Puzzle, error) {
	return s.Puzzles.GetByID(ctx, id)
}

func (s *MySQLStore) FindPlay(ctx context.Context, puzzleID, userID uint64) (model.Play, error) {
	return s.Plays.Find(ctx, puzzleID, userID)
}

func (s *MySQLStore) FindPlayByID(ctx context.Context, id uint64) (model.Play, error) {
	return s.Plays.GetByID(ctx, id)
}

func (s *MySQLStore) CreatePlay(ctx context.Context, puzzleID, userID uint64, maxGuesses int) (model.Play, error) {
	return s.Plays.Create(ctx, puzzleID, userID, maxGuesses)
}

func (s *MySQLStore) ListGuessesForPlay(ctx context.Context, playID uint64) ([]model.Guess, error) {
	return s.Guesses.ListByPlay(ctx, playID)
}

func (s *MySQLStore) IsCellOccupied(ctx context.Context, playID uint64, cellKey string) (bool, error) {
	return s.Guesses.Exists(ctx, playID, cellKey)
}

// RecordGuess inserts the guess and charges the play in one transaction.
// The play row is locked first, so concurrent commits for the same play
// run one after another; the unique key on (play_id, cell_key) and the
// guarded budget update reject the loser of any race.  Nothing is
// written unless both statements succeed.  A deadlock or lock wait
// timeout is reported as ErrConflict.
func (s *MySQLStore) RecordGuess(ctx context.Context, rec GuessRecord) (model.Play, error) {
	play, err := s.recordGuess(ctx, rec)
	if isLockConflict(err) {
		return model.Play{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return play, err
}

func (s *MySQLStore) recordGuess(ctx context.Context, rec GuessRecord) (model.Play, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Play{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	play, err := s.Plays.LockByIDTx(ctx, tx, rec.PlayID)
	if err != nil {
		return model.Play{}, err
	}
	if !play.Active() {
		return model.Play{}, ErrBudgetExhausted
	}
	if err := s.Guesses.CreateTx(ctx, tx, rec.Guess()); err != nil {
		return model.Play{}, err
	}
	if err := s.Plays.ConsumeGuessTx(ctx, tx, rec.PlayID, rec.PointsDelta); err != nil {
		return model.Play{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Play{}, err
	}
	committed = true

	play.GuessesUsed++
	play.Points += rec.PointsDelta
	return play, nil
}
