package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-grid/internal/model"
)

func TestMemoryStoreCreatePlayIsUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.CreatePlay(ctx, 1, 42, model.DefaultMaxGuesses)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, p.Status)
	assert.Equal(t, 9, p.MaxGuesses)

	_, err = s.CreatePlay(ctx, 1, 42, model.DefaultMaxGuesses)
	assert.ErrorIs(t, err, ErrDuplicatePlay)

	got, err := s.FindPlay(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.FindPlay(ctx, 2, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRecordGuess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := s.CreatePlay(ctx, 1, 7, 2)
	require.NoError(t, err)

	play, err := s.RecordGuess(ctx, GuessRecord{PlayID: p.ID, CellKey: "r1c1", MovieID: 550, Correct: true, PointsDelta: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, play.GuessesUsed)
	assert.Equal(t, 100, play.Points)

	_, err = s.RecordGuess(ctx, GuessRecord{PlayID: p.ID, CellKey: "r1c1", MovieID: 13})
	assert.ErrorIs(t, err, ErrCellTaken)

	_, err = s.RecordGuess(ctx, GuessRecord{PlayID: p.ID, CellKey: "r1c2", MovieID: 13})
	require.NoError(t, err)

	_, err = s.RecordGuess(ctx, GuessRecord{PlayID: p.ID, CellKey: "r1c3", MovieID: 13})
	assert.ErrorIs(t, err, ErrBudgetExhausted)

	guesses, err := s.ListGuessesForPlay(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, guesses, 2)

	occupied, err := s.IsCellOccupied(ctx, p.ID, "r1c3")
	require.NoError(t, err)
	assert.False(t, occupied)

	_, err = s.RecordGuess(ctx, GuessRecord{PlayID: 999, CellKey: "r1c1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentSameCell(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := s.CreatePlay(ctx, 1, 7, model.DefaultMaxGuesses)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, taken := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(movie int64) {
			defer wg.Done()
			_, err := s.RecordGuess(ctx, GuessRecord{PlayID: p.ID, CellKey: "r2c2", MovieID: movie, PointsDelta: 100, Correct: true})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if assert.ErrorIs(t, err, ErrCellTaken) {
				taken++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 19, taken)
	got, err := s.FindPlayByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.GuessesUsed)
	assert.Equal(t, 100, got.Points)
}

func TestMemoryStorePuzzles(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	pub := s.AddPuzzle(model.Puzzle{PuzzleDate: "2026-10-16"}, true)
	draft := s.AddPuzzle(model.Puzzle{PuzzleDate: "2026-10-17"}, false)

	got, err := s.FindPuzzleByDate(ctx, "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, pub.ID, got.ID)

	_, err = s.FindPuzzleByDate(ctx, "2026-10-17")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.FindPuzzleByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", got.PuzzleDate)
}
