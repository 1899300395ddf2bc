package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceToday(t *testing.T) {
	f := newFixture(t)

	today, err := f.svc.Today(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, f.puzzle.ID, today.Puzzle.ID)
	assert.Equal(t, alice, today.Play.UserID)
	assert.Empty(t, today.Guesses)
	require.Len(t, today.Board, 3)
	assert.False(t, today.Board[0][0].Filled)

	_, err = f.svc.Submit(context.Background(), alice, SubmitGuessRequest{
		CellKey: "r1c1", MovieID: fightClub, ActorID: bradPitt, PosterPath: "/fc.jpg",
	})
	require.NoError(t, err)

	today, err = f.svc.Today(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, today.Guesses, 1)
	assert.True(t, today.Board[0][0].Filled)
	assert.Equal(t, "/fc.jpg", today.Board[0][0].PosterPath)
	assert.Equal(t, 100, today.Play.Points)
}

func TestServiceRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Today(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.Submit(context.Background(), 0, SubmitGuessRequest{CellKey: "r1c1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrUpstreamUnavailable))
	assert.True(t, Retryable(storageError("x", errDisk)))
	assert.False(t, Retryable(ErrBudgetExhausted))
	assert.False(t, Retryable(ErrInvalidSelection))
	assert.False(t, Retryable(nil))
}
