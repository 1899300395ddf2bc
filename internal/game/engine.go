package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-grid/internal/metrics"
	"github.com/iliyamo/movie-grid/internal/model"
	"github.com/iliyamo/movie-grid/internal/queue"
	"github.com/iliyamo/movie-grid/internal/repository"
)

const (
	defaultCommitTimeout  = 5 * time.Second
	defaultPublishTimeout = 2 * time.Second

	// Column widths of guesses.cell_key and guesses.poster_path.
	maxCellKeyLen    = 8
	maxPosterPathLen = 255
)

// SubmitGuessRequest names a movie for one cell of a play.  ActorID must
// be the actor bound to the cell's row; the engine does not derive it.
type SubmitGuessRequest struct {
	PlayID     uint64
	CellKey    string
	MovieID    int64
	ActorID    int64
	PosterPath string
}

// SubmitResult is the outcome of an accepted submission.  Play is the
// snapshot after the commit.
type SubmitResult struct {
	Accepted      bool
	Correct       bool
	PointsAwarded int
	Play          model.Play
	Guess         model.Guess
}

// Engine validates and commits guesses.
type Engine struct {
	store          Store
	oracle         Oracle
	publisher      Publisher
	log            logrus.FieldLogger
	clock          Clock
	commitTimeout  time.Duration
	publishTimeout time.Duration
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithPublisher sends a GuessRecordedEvent after every commit.
func WithPublisher(p Publisher) EngineOption { return func(e *Engine) { e.publisher = p } }

// WithLogger replaces the discard logger.
func WithLogger(l logrus.FieldLogger) EngineOption { return func(e *Engine) { e.log = l } }

// WithClock stamps events with c instead of the wall clock.
func WithClock(c Clock) EngineOption { return func(e *Engine) { e.clock = c } }

// WithCommitTimeout bounds the atomic write once it has started.
func WithCommitTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.commitTimeout = d }
}

func NewEngine(store Store, oracle Oracle, opts ...EngineOption) *Engine {
	discard := logrus.New()
	discard.Out = io.Discard
	e := &Engine{
		store:          store,
		oracle:         oracle,
		log:            discard,
		clock:          SystemClock{},
		commitTimeout:  defaultCommitTimeout,
		publishTimeout: defaultPublishTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SubmitGuess runs the precondition checks in a fixed order, asks the
// oracle, then records the guess and charges the play in one atomic step.
// Any error means nothing was written.  Once the commit starts it runs
// to completion even if ctx is cancelled.
func (e *Engine) SubmitGuess(ctx context.Context, playerID uint64, req SubmitGuessRequest) (SubmitResult, error) {
	log := e.log.WithFields(logrus.Fields{
		"player_id": playerID,
		"play_id":   req.PlayID,
		"cell_key":  req.CellKey,
		"movie_id":  req.MovieID,
	})

	res, err := e.submit(ctx, playerID, req)
	switch {
	case err == nil:
		outcome := metrics.OutcomeIncorrect
		if res.Correct {
			outcome = metrics.OutcomeCorrect
		}
		metrics.ObserveGuess(outcome)
		log.WithFields(logrus.Fields{
			"correct":      res.Correct,
			"points":       res.Play.Points,
			"guesses_used": res.Play.GuessesUsed,
		}).Info("guess recorded")
	case errors.Is(err, ErrUpstreamUnavailable):
		metrics.ObserveGuess(metrics.OutcomeUpstream)
		log.WithError(err).Warn("guess aborted, oracle unavailable")
	case errors.Is(err, ErrStorage), errors.Is(err, ErrConflict):
		metrics.ObserveGuess(metrics.OutcomeStorageError)
		log.WithError(err).Error("guess failed")
	default:
		metrics.ObserveGuess(metrics.OutcomeRejected)
		log.WithError(err).Info("guess rejected")
	}
	return res, err
}

func (e *Engine) submit(ctx context.Context, playerID uint64, req SubmitGuessRequest) (SubmitResult, error) {
	if playerID == 0 {
		return SubmitResult{}, ErrUnauthenticated
	}

	play, err := e.store.FindPlayByID(ctx, req.PlayID)
	if errors.Is(err, repository.ErrNotFound) {
		return SubmitResult{}, fmt.Errorf("%w: play %d", ErrUnauthorized, req.PlayID)
	}
	if err != nil {
		return SubmitResult{}, storageError("load play", err)
	}
	if play.UserID != playerID {
		return SubmitResult{}, fmt.Errorf("%w: play %d", ErrUnauthorized, req.PlayID)
	}
	if !play.Active() {
		return SubmitResult{}, ErrBudgetExhausted
	}

	if len(req.CellKey) > maxCellKeyLen {
		return SubmitResult{}, invalid("cell key too long")
	}
	taken, err := e.store.IsCellOccupied(ctx, play.ID, req.CellKey)
	if err != nil {
		return SubmitResult{}, storageError("check cell", err)
	}
	if taken {
		return SubmitResult{}, ErrCellAlreadyAnswered
	}

	row, _, err := model.ParseCellKey(req.CellKey)
	if err != nil {
		return SubmitResult{}, invalid("%v", err)
	}
	if req.MovieID <= 0 {
		return SubmitResult{}, invalid("movie id required")
	}
	if req.ActorID <= 0 {
		return SubmitResult{}, invalid("actor id required")
	}
	if len(req.PosterPath) > maxPosterPathLen {
		return SubmitResult{}, invalid("poster path longer than %d bytes", maxPosterPathLen)
	}
	puzzle, err := e.store.FindPuzzleByID(ctx, play.PuzzleID)
	if err != nil {
		return SubmitResult{}, storageError("load puzzle", err)
	}
	if want, _ := puzzle.RowActor(row); want != req.ActorID {
		return SubmitResult{}, invalid("actor %d is not the actor for row %d", req.ActorID, row)
	}

	correct, err := e.oracle.ActorAppearsInMovie(ctx, req.MovieID, req.ActorID)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	rec := repository.GuessRecord{
		PlayID:     play.ID,
		CellKey:    req.CellKey,
		MovieID:    req.MovieID,
		PosterPath: req.PosterPath,
		Correct:    correct,
	}
	if correct {
		rec.PointsDelta = model.PointsPerCorrectGuess
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.commitTimeout)
	defer cancel()
	updated, err := e.store.RecordGuess(commitCtx, rec)
	switch {
	case errors.Is(err, repository.ErrCellTaken):
		return SubmitResult{}, ErrCellAlreadyAnswered
	case errors.Is(err, repository.ErrBudgetExhausted):
		return SubmitResult{}, ErrBudgetExhausted
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrConflict):
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrConflict, err)
	case err != nil:
		return SubmitResult{}, storageError("record guess", err)
	}

	res := SubmitResult{
		Accepted:      true,
		Correct:       correct,
		PointsAwarded: rec.PointsDelta,
		Play:          updated,
		Guess:         rec.Guess(),
	}
	e.publish(ctx, res, req.ActorID)
	return res, nil
}

// publish is best effort: the guess is already committed.
func (e *Engine) publish(ctx context.Context, res SubmitResult, actorID int64) {
	if e.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.publishTimeout)
	defer cancel()

	ev := queue.GuessRecordedEvent{
		EventID:       uuid.NewString(),
		PlayID:        res.Play.ID,
		PuzzleID:      res.Play.PuzzleID,
		UserID:        res.Play.UserID,
		CellKey:       res.Guess.CellKey,
		MovieID:       res.Guess.MovieID,
		ActorID:       actorID,
		Correct:       res.Correct,
		PointsAwarded: res.PointsAwarded,
		GuessesUsed:   res.Play.GuessesUsed,
		MaxGuesses:    res.Play.MaxGuesses,
		Points:        res.Play.Points,
		RecordedAt:    e.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := e.publisher.PublishGuessRecorded(pubCtx, ev); err != nil {
		e.log.WithError(err).WithField("event_id", ev.EventID).Warn("publish guess event failed")
	}
}
