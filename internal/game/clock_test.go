package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/repository"
)

func TestDayResolverUsesReferenceZone(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		// MDT, UTC-6
		{time.Date(2025, 3, 15, 5, 30, 0, 0, time.UTC), "2025-03-14"},
		{time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC), "2025-03-15"},
		// MST, UTC-7
		{time.Date(2025, 1, 10, 6, 59, 0, 0, time.UTC), "2025-01-09"},
		{time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC), "2025-01-10"},
	}
	for _, tc := range cases {
		d, err := NewDayResolver("", FixedClock{T: tc.at})
		require.NoError(t, err)
		assert.Equal(t, tc.want, d.Today(), tc.at.String())
	}
}

func TestDayResolverRejectsUnknownZone(t *testing.T) {
	_, err := NewDayResolver("Mars/Olympus_Mons", nil)
	assert.Error(t, err)
}

func TestPuzzlesToday(t *testing.T) {
	store := repository.NewMemoryStore()
	days, err := NewDayResolver(DefaultTimezone, FixedClock{T: gameDay})
	require.NoError(t, err)
	puzzles := NewPuzzles(store, days)

	_, err = puzzles.Today(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	draft := testPuzzle()
	store.AddPuzzle(draft, false)
	_, err = puzzles.Today(context.Background())
	assert.ErrorIs(t, err, ErrNotFound, "unpublished puzzles stay hidden")

	tomorrow := testPuzzle()
	tomorrow.PuzzleDate = "2025-03-15"
	store.AddPuzzle(tomorrow, true)
	live := store.AddPuzzle(testPuzzle(), true)

	got, err := puzzles.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
	actor, ok := got.RowActor(1)
	assert.True(t, ok)
	assert.Equal(t, bradPitt, actor)
	assert.Equal(t, model.GridSize, len(got.ColClues))
}
