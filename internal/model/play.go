package model

// DefaultMaxGuesses is the guess budget assigned to every new play.
const DefaultMaxGuesses = 9

// StatusInProgress is the only status a play is created with.  A play
// whose budget is spent is exhausted by derivation (see Active); no
// terminal status is written.
const StatusInProgress = "IN_PROGRESS"

// Play is one player's attempt at one day's puzzle.  At most one play
// exists per (puzzle, player).
//
// Fields:
//
//	ID          – plays.id
//	PuzzleID    – plays.puzzle_id
//	UserID      – plays.user_id (the player)
//	GuessesUsed – number of guesses recorded; equals the ledger size.
//	MaxGuesses  – budget fixed at creation.
//	Points      – accumulated score.
//	Status      – plays.status
type Play struct {
	ID          uint64 `json:"id"`
	PuzzleID    uint64 `json:"puzzle_id"`
	UserID      uint64 `json:"user_id"`
	GuessesUsed int    `json:"guesses_used"`
	MaxGuesses  int    `json:"max_guesses"`
	Points      int    `json:"points"`
	Status      string `json:"status"`
}

// Active reports whether the play may still accept guesses.
func (p Play) Active() bool { return p.GuessesUsed < p.MaxGuesses }

// Remaining returns the unspent budget.
func (p Play) Remaining() int {
	if n := p.MaxGuesses - p.GuessesUsed; n > 0 {
		return n
	}
	return 0
}
