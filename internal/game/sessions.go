package game

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/repository"
)

// createAttempts bounds the find/create loop.  Two attempts settle any
// race; the third covers a replica that lags the primary once.
const createAttempts = 3

// Sessions hands out the single play a player has for a puzzle.
type Sessions struct {
	store Store
	log   logrus.FieldLogger
}

func NewSessions(store Store, log logrus.FieldLogger) *Sessions {
	return &Sessions{store: store, log: log}
}

// GetOrCreate returns the player's play for puzzleID, creating it on first
// access.  Two concurrent first requests both converge on the stored row:
// the loser of the insert race gets repository.ErrDuplicatePlay and reads
// the winner's row.
func (s *Sessions) GetOrCreate(ctx context.Context, puzzleID, playerID uint64) (model.Play, error) {
	if playerID == 0 {
		return model.Play{}, ErrUnauthenticated
	}
	for attempt := 1; attempt <= createAttempts; attempt++ {
		play, err := s.store.FindPlay(ctx, puzzleID, playerID)
		if err == nil {
			return play, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.Play{}, storageError("load play", err)
		}

		play, err = s.store.CreatePlay(ctx, puzzleID, playerID, model.DefaultMaxGuesses)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"play_id":   play.ID,
				"puzzle_id": puzzleID,
				"player_id": playerID,
			}).Info("play created")
			return play, nil
		}
		if !errors.Is(err, repository.ErrDuplicatePlay) {
			return model.Play{}, storageError("create play", err)
		}
		s.log.WithFields(logrus.Fields{
			"puzzle_id": puzzleID,
			"player_id": playerID,
			"attempt":   attempt,
		}).Debug("lost play creation race, re-reading")
	}
	return model.Play{}, ErrDuplicateSession
}
