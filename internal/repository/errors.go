// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// game engine and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write cannot be performed because of
// conflicting state that is not covered by a more specific error.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicatePlay is returned by CreatePlay when a play already exists
// for the (puzzle, player) pair.  The caller lost a creation race and
// should read the stored row.
var ErrDuplicatePlay = errors.New("play already exists for puzzle and player")

// ErrCellTaken is returned by RecordGuess when the cell already holds a
// guess for the play.
var ErrCellTaken = errors.New("cell already has a guess")

// ErrBudgetExhausted is returned by RecordGuess when the play has no
// guesses left at commit time.
var ErrBudgetExhausted = errors.New("guess budget exhausted")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

const (
	mysqlLockWaitTimeout = 1205
	mysqlDuplicateEntry  = 1062
	mysqlDeadlock        = 1213
)

// isDuplicateKey reports whether err is a unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isLockConflict reports whether err is a deadlock or lock wait timeout.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}
