// Package queue defines the messages exchanged over the broker and the
// background consumer that records them.
package queue

// GuessRecordedQueue is the durable queue every committed guess is
// published to.
const GuessRecordedQueue = "guess.recorded"

// GuessRecordedEvent is published once per committed guess.  It carries
// the guess and the play counters after the commit so consumers can log
// or aggregate without reading the primary database.
type GuessRecordedEvent struct {
	EventID       string `json:"event_id"`
	PlayID        uint64 `json:"play_id"`
	PuzzleID      uint64 `json:"puzzle_id"`
	UserID        uint64 `json:"user_id"`
	CellKey       string `json:"cell_key"`
	MovieID       int64  `json:"tmdb_movie_id"`
	ActorID       int64  `json:"actor_id"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	GuessesUsed   int    `json:"guesses_used"`
	MaxGuesses    int    `json:"max_guesses"`
	Points        int    `json:"points"`
	RecordedAt    string `json:"recorded_at"`
}
