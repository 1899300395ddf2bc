package game

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-grid/internal/repository"
)

func TestGetOrCreateReturnsSamePlay(t *testing.T) {
	f := newFixture(t)
	first := f.play(t, alice)
	second := f.play(t, alice)
	assert.Equal(t, first, second)

	other := f.play(t, bob)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreateRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sessions.GetOrCreate(context.Background(), f.puzzle.ID, 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.store.FindPlay(context.Background(), f.puzzle.ID, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetOrCreateConcurrentFirstAccess(t *testing.T) {
	f := newFixture(t)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.svc.Sessions.GetOrCreate(context.Background(), f.puzzle.ID, alice)
			if assert.NoError(t, err) {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var first uint64
	for id := range ids {
		if first == 0 {
			first = id
		}
		assert.Equal(t, first, id)
	}
}

func TestGetOrCreateRereadsAfterLostRace(t *testing.T) {
	mem := repository.NewMemoryStore()
	store := &flakyStore{MemoryStore: mem}
	f := newFixtureWithStore(t, mem, store)

	winner, err := mem.CreatePlay(context.Background(), f.puzzle.ID, alice, 9)
	require.NoError(t, err)
	store.hideFirstFinds = 1

	got, err := f.svc.Sessions.GetOrCreate(context.Background(), f.puzzle.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

func TestGetOrCreateGivesUpAfterRepeatedConflicts(t *testing.T) {
	mem := repository.NewMemoryStore()
	f := newFixtureWithStore(t, mem, &flakyStore{MemoryStore: mem, alwaysDup: true})

	_, err := f.svc.Sessions.GetOrCreate(context.Background(), f.puzzle.ID, alice)
	assert.ErrorIs(t, err, ErrDuplicateSession)
	assert.True(t, Retryable(err))
}
