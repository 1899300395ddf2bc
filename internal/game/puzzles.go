package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/repository"
)

// Puzzles resolves the puzzle that is live today.
type Puzzles struct {
	store Store
	days  *DayResolver
}

func NewPuzzles(store Store, days *DayResolver) *Puzzles {
	return &Puzzles{store: store, days: days}
}

// Today returns the published puzzle for the current day in the
// reference zone.
func (p *Puzzles) Today(ctx context.Context) (model.Puzzle, error) {
	day := p.days.Today()
	puzzle, err := p.store.FindPuzzleByDate(ctx, day)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Puzzle{}, fmt.Errorf("%w: %s", ErrNotFound, day)
	}
	if err != nil {
		return model.Puzzle{}, storageError("load puzzle", err)
	}
	return puzzle, nil
}
