package game

import (
	"errors"
	"fmt"
)

// Error taxonomy of the play/guess core.  Callers branch with errors.Is;
// every error returned by this package wraps exactly one of these.
var (
	// ErrUnauthenticated means no verified player identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound means no puzzle is published for today.
	ErrNotFound = errors.New("no published puzzle for today")
	// ErrUnauthorized means the play does not exist or belongs to someone else.
	ErrUnauthorized = errors.New("play does not belong to player")
	// ErrBudgetExhausted means the play has no guesses left.
	ErrBudgetExhausted = errors.New("no guesses remaining")
	// ErrCellAlreadyAnswered means the cell already holds a guess.
	ErrCellAlreadyAnswered = errors.New("cell already answered")
	// ErrInvalidSelection means the request is malformed or names the wrong actor.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrUpstreamUnavailable means correctness could not be determined.
	ErrUpstreamUnavailable = errors.New("correctness check unavailable, please retry")
	// ErrStorage means a data-access failure.
	ErrStorage = errors.New("storage error")
	// ErrConflict means a write lost a race that maps to no precondition.
	ErrConflict = errors.New("conflicting update")
	// ErrDuplicateSession means a play could not be created or read back
	// after repeated uniqueness conflicts.
	ErrDuplicateSession = errors.New("duplicate play session")
)

// Retryable reports whether err is transient: the same call may succeed
// later and no state was changed by the failed attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrStorage) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateSession)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSelection, fmt.Sprintf(format, args...))
}
