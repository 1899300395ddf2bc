package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/queue"
	"github.com/iliyamo/movie-grid/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	alice uint64 = 42
	bob   uint64 = 43

	bradPitt      int64 = 287
	edwardNorton  int64 = 819
	helenaBonham  int64 = 1283
	fightClub     int64 = 550
	sevenMovie    int64 = 807
	theDarkKnight int64 = 155
)

// 2025-03-14 23:30 in Denver (MDT, UTC-6).
var gameDay = time.Date(2025, 3, 15, 5, 30, 0, 0, time.UTC)

func testPuzzle() model.Puzzle {
	return model.Puzzle{
		PuzzleDate: "2025-03-14",
		RowClues: [3]model.RowClue{
			{Name: "Brad Pitt", ActorID: bradPitt},
			{Name: "Edward Norton", ActorID: edwardNorton},
			{Name: "Helena Bonham Carter", ActorID: helenaBonham},
		},
		ColClues: [3]model.ColumnClue{{Name: "1990s"}, {Name: "Thriller"}, {Name: "Directed by Fincher"}},
	}
}

// fakeOracle answers from a fixed cast table.
type fakeOracle struct {
	mu    sync.Mutex
	casts map[int64][]int64
	err   error
	calls int
	hook  func()
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{casts: map[int64][]int64{
		fightClub:  {bradPitt, edwardNorton, helenaBonham},
		sevenMovie: {bradPitt},
	}}
}

func (o *fakeOracle) ActorAppearsInMovie(_ context.Context, movieID, actorID int64) (bool, error) {
	o.mu.Lock()
	o.calls++
	err, hook := o.err, o.hook
	o.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return false, err
	}
	for _, id := range o.casts[movieID] {
		if id == actorID {
			return true, nil
		}
	}
	return false, nil
}

func (o *fakeOracle) setErr(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.GuessRecordedEvent
	err    error
}

func (p *recordingPublisher) PublishGuessRecorded(_ context.Context, ev queue.GuessRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

// ctxCheckingStore fails RecordGuess when handed a cancelled context,
// the way a database driver would.
type ctxCheckingStore struct {
	*repository.MemoryStore
}

func (s ctxCheckingStore) RecordGuess(ctx context.Context, rec repository.GuessRecord) (model.Play, error) {
	if err := ctx.Err(); err != nil {
		return model.Play{}, err
	}
	return s.MemoryStore.RecordGuess(ctx, rec)
}

// cellQueryStore records the cell keys passed to IsCellOccupied.
type cellQueryStore struct {
	*repository.MemoryStore
	mu   sync.Mutex
	keys []string
}

func (s *cellQueryStore) IsCellOccupied(ctx context.Context, playID uint64, cellKey string) (bool, error) {
	s.mu.Lock()
	s.keys = append(s.keys, cellKey)
	s.mu.Unlock()
	return s.MemoryStore.IsCellOccupied(ctx, playID, cellKey)
}

func (s *cellQueryStore) queried() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// flakyStore wraps MemoryStore with injectable failures.
type flakyStore struct {
	*repository.MemoryStore
	mu             sync.Mutex
	hideFirstFinds int
	alwaysDup      bool
	recordErr      error
}

func (s *flakyStore) FindPlay(ctx context.Context, puzzleID, userID uint64) (model.Play, error) {
	s.mu.Lock()
	hide := s.hideFirstFinds > 0 || s.alwaysDup
	if s.hideFirstFinds > 0 {
		s.hideFirstFinds--
	}
	s.mu.Unlock()
	if hide {
		return model.Play{}, repository.ErrNotFound
	}
	return s.MemoryStore.FindPlay(ctx, puzzleID, userID)
}

func (s *flakyStore) CreatePlay(ctx context.Context, puzzleID, userID uint64, max int) (model.Play, error) {
	if s.alwaysDup {
		return model.Play{}, repository.ErrDuplicatePlay
	}
	return s.MemoryStore.CreatePlay(ctx, puzzleID, userID, max)
}

func (s *flakyStore) RecordGuess(ctx context.Context, rec repository.GuessRecord) (model.Play, error) {
	if s.recordErr != nil {
		return model.Play{}, s.recordErr
	}
	return s.MemoryStore.RecordGuess(ctx, rec)
}

var errDisk = errors.New("disk on fire")

type fixture struct {
	store  *repository.MemoryStore
	oracle *fakeOracle
	pub    *recordingPublisher
	svc    *Service
	puzzle model.Puzzle
	logs   *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return newFixtureWithStore(t, store, store)
}

func newFixtureWithStore(t *testing.T, mem *repository.MemoryStore, store Store) *fixture {
	t.Helper()
	puzzle := mem.AddPuzzle(testPuzzle(), true)
	days, err := NewDayResolver(DefaultTimezone, FixedClock{T: gameDay})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	oracle := newFakeOracle()
	pub := &recordingPublisher{}
	svc := NewService(store, oracle, days, logger, WithPublisher(pub), WithClock(FixedClock{T: gameDay}))
	return &fixture{store: mem, oracle: oracle, pub: pub, svc: svc, puzzle: puzzle, logs: hook}
}

func (f *fixture) play(t *testing.T, player uint64) model.Play {
	t.Helper()
	p, err := f.svc.Sessions.GetOrCreate(context.Background(), f.puzzle.ID, player)
	require.NoError(t, err)
	return p
}

func rowActor(p model.Puzzle, cellKey string) int64 {
	row, _, err := model.ParseCellKey(cellKey)
	if err != nil {
		return 0
	}
	a, _ := p.RowActor(row)
	return a
}
