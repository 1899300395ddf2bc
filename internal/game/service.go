package game

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/model"
)

// Service bundles the components the HTTP layer drives.
type Service struct {
	Puzzles  *Puzzles
	Sessions *Sessions
	Ledger   *Ledger
	Engine   *Engine
}

// NewService wires the components over one store.
func NewService(store Store, oracle Oracle, days *DayResolver, log logrus.FieldLogger, opts ...EngineOption) *Service {
	opts = append([]EngineOption{WithLogger(log)}, opts...)
	return &Service{
		Puzzles:  NewPuzzles(store, days),
		Sessions: NewSessions(store, log),
		Ledger:   NewLedger(store),
		Engine:   NewEngine(store, oracle, opts...),
	}
}

// Today is what a player sees when opening the game.
type Today struct {
	Puzzle  model.Puzzle        `json:"puzzle"`
	Play    model.Play          `json:"play"`
	Guesses []model.Guess       `json:"guesses"`
	Board   [][]model.BoardCell `json:"board"`
}

// Today resolves today's puzzle, the player's play for it (created on
// first access) and the guesses made so far.
func (s *Service) Today(ctx context.Context, playerID uint64) (Today, error) {
	if playerID == 0 {
		return Today{}, ErrUnauthenticated
	}
	puzzle, err := s.Puzzles.Today(ctx)
	if err != nil {
		return Today{}, err
	}
	play, err := s.Sessions.GetOrCreate(ctx, puzzle.ID, playerID)
	if err != nil {
		return Today{}, err
	}
	guesses, err := s.Ledger.List(ctx, play.ID)
	if err != nil {
		return Today{}, err
	}
	return Today{
		Puzzle:  puzzle,
		Play:    play,
		Guesses: guesses,
		Board:   model.Board(guesses),
	}, nil
}

// Submit forwards req to the engine.  A zero PlayID targets the player's
// play for today's puzzle.
func (s *Service) Submit(ctx context.Context, playerID uint64, req SubmitGuessRequest) (SubmitResult, error) {
	if playerID == 0 {
		return SubmitResult{}, ErrUnauthenticated
	}
	if req.PlayID == 0 {
		puzzle, err := s.Puzzles.Today(ctx)
		if err != nil {
			return SubmitResult{}, err
		}
		play, err := s.Sessions.GetOrCreate(ctx, puzzle.ID, playerID)
		if err != nil {
			return SubmitResult{}, err
		}
		req.PlayID = play.ID
	}
	return s.Engine.SubmitGuess(ctx, playerID, req)
}
