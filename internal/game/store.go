package game

import (
	"context"

	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/queue"
	"github.com/iliyamo/movie-grid/internal/repository"
)

// Store is the data-access contract the core consumes.  Lookups report
// absence with repository.ErrNotFound; CreatePlay reports a lost creation
// race with repository.ErrDuplicatePlay; RecordGuess must check cell
// openness and budget and write the guess plus play counters atomically,
// reporting repository.ErrCellTaken or repository.ErrBudgetExhausted
// when the guard rejects the write.
type Store interface {
	FindPuzzleByDate(ctx context.Context, day string) (model.Puzzle, error)
	FindPuzzleByID(ctx context.Context, id uint64) (model.Puzzle, error)
	FindPlay(ctx context.Context, puzzleID, userID uint64) (model.Play, error)
	FindPlayByID(ctx context.Context, id uint64) (model.Play, error)
	CreatePlay(ctx context.Context, puzzleID, userID uint64, maxGuesses int) (model.Play, error)
	ListGuessesForPlay(ctx context.Context, playID uint64) ([]model.Guess, error)
	IsCellOccupied(ctx context.Context, playID uint64, cellKey string) (bool, error)
	RecordGuess(ctx context.Context, rec repository.GuessRecord) (model.Play, error)
}

// Oracle decides whether an actor is in a movie's cast.  Any failure to
// decide must be returned as an error, never as false.
type Oracle interface {
	ActorAppearsInMovie(ctx context.Context, movieID, actorID int64) (bool, error)
}

// Publisher receives an event for every committed guess.
type Publisher interface {
	PublishGuessRecorded(ctx context.Context, ev queue.GuessRecordedEvent) error
}

var (
	_ Store = (*repository.MySQLStore)(nil)
	_ Store = (*repository.MemoryStore)(nil)
)
