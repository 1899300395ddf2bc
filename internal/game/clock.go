package game

import (
	"fmt"
	"time"
)

// DefaultTimezone is the reference zone that defines "today".
const DefaultTimezone = "America/Denver"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.  Used by tests and replay tooling.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// DayResolver turns the clock's instant into a calendar day in a fixed
// zone, independent of the server's local zone.
type DayResolver struct {
	loc   *time.Location
	clock Clock
}

// NewDayResolver loads tz from the zone database.
func NewDayResolver(tz string, clock Clock) (*DayResolver, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &DayResolver{loc: loc, clock: clock}, nil
}

// Today returns YYYY-MM-DD in the resolver's zone.
func (d *DayResolver) Today() string {
	return d.clock.Now().In(d.loc).Format(time.DateOnly)
}
