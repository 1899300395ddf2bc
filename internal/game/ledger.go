package game

import (
	"context"

	"github.com/iliyamo/movie-grid/internal/model"
)

// Ledger exposes the guesses already committed for a play.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger { return &Ledger{store: store} }

// List returns every guess of the play in no particular order.
func (l *Ledger) List(ctx context.Context, playID uint64) ([]model.Guess, error) {
	guesses, err := l.store.ListGuessesForPlay(ctx, playID)
	if err != nil {
		return nil, storageError("list guesses", err)
	}
	return guesses, nil
}

// IsOccupied reports whether cellKey already holds a guess.
func (l *Ledger) IsOccupied(ctx context.Context, playID uint64, cellKey string) (bool, error) {
	ok, err := l.store.IsCellOccupied(ctx, playID, cellKey)
	if err != nil {
		return false, storageError("check cell", err)
	}
	return ok, nil
}
