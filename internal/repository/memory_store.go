package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/movie-grid/internal/model"
)

type playKey struct {
	puzzleID uint64
	userID   uint64
}

type cellRef struct {
	playID  uint64
	cellKey string
}

// MemoryStore is an in-process implementation of the storage contract
// with the same uniqueness and budget guarantees as MySQLStore.  A single
// mutex makes every check-and-write atomic.
type MemoryStore struct {
	mu         sync.Mutex
	puzzles    map[uint64]model.Puzzle
	published  map[string]uint64
	plays      map[uint64]model.Play
	playByPair map[playKey]uint64
	guesses    map[cellRef]model.Guess
	nextPuzzle uint64
	nextPlay   uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		puzzles:    make(map[uint64]model.Puzzle),
		published:  make(map[string]uint64),
		plays:      make(map[uint64]model.Play),
		playByPair: make(map[playKey]uint64),
		guesses:    make(map[cellRef]model.Guess),
	}
}

// AddPuzzle stores p, assigning an id when p.ID is zero.  Published
// puzzles become visible to FindPuzzleByDate.
func (s *MemoryStore) AddPuzzle(p model.Puzzle, published bool) model.Puzzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextPuzzle++
		p.ID = s.nextPuzzle
	} else if p.ID > s.nextPuzzle {
		s.nextPuzzle = p.ID
	}
	s.puzzles[p.ID] = p
	if published {
		s.published[p.PuzzleDate] = p.ID
	}
	return p
}

func (s *MemoryStore) FindPuzzleByDate(_ context.Context, day string) (model.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.published[day]
	if !ok {
		return model.Puzzle{}, ErrNotFound
	}
	return s.puzzles[id], nil
}

func (s *MemoryStore) FindPuzzleByID(_ context.Context, id uint64) (model.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.puzzles[id]
	if !ok {
		return model.Puzzle{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) FindPlay(_ context.Context, puzzleID, userID uint64) (model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.playByPair[playKey{puzzleID, userID}]
	if !ok {
		return model.Play{}, ErrNotFound
	}
	return s.plays[id], nil
}

func (s *MemoryStore) FindPlayByID(_ context.Context, id uint64) (model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plays[id]
	if !ok {
		return model.Play{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) CreatePlay(_ context.Context, puzzleID, userID uint64, maxGuesses int) (model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := playKey{puzzleID, userID}
	if _, ok := s.playByPair[k]; ok {
		return model.Play{}, ErrDuplicatePlay
	}
	s.nextPlay++
	p := model.Play{
		ID:         s.nextPlay,
		PuzzleID:   puzzleID,
		UserID:     userID,
		MaxGuesses: maxGuesses,
		Status:     model.StatusInProgress,
	}
	s.plays[p.ID] = p
	s.playByPair[k] = p.ID
	return p, nil
}

func (s *MemoryStore) ListGuessesForPlay(_ context.Context, playID uint64) ([]model.Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Guess{}
	for ref, g := range s.guesses {
		if ref.playID == playID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *MemoryStore) IsCellOccupied(_ context.Context, playID uint64, cellKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.guesses[cellRef{playID, cellKey}]
	return ok, nil
}

// RecordGuess mirrors MySQLStore.RecordGuess.
func (s *MemoryStore) RecordGuess(_ context.Context, rec GuessRecord) (model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	play, ok := s.plays[rec.PlayID]
	if !ok {
		return model.Play{}, ErrNotFound
	}
	if !play.Active() {
		return model.Play{}, ErrBudgetExhausted
	}
	ref := cellRef{rec.PlayID, rec.CellKey}
	if _, taken := s.guesses[ref]; taken {
		return model.Play{}, ErrCellTaken
	}
	s.guesses[ref] = rec.Guess()
	play.GuessesUsed++
	play.Points += rec.PointsDelta
	s.plays[play.ID] = play
	return play, nil
}
