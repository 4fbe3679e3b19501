package item

import (
	"fmt"
	"time"
)

// Retention decides how long checked-off items survive.
// Items checked off before the start of the current day, minus Days, are swept.
type Retention struct {
	Days     int
	Location *time.Location
}

// NewRetention builds a Retention from a day count and an IANA timezone name.
func NewRetention(days int, timezone string) (Retention, error) {
	if days < 0 {
		return Retention{}, fmt.Errorf("retention days must be non-negative, got %d", days)
	}
	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return Retention{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	return Retention{Days: days, Location: loc}, nil
}

// Cutoff returns the instant before which checked-off items expire.
func (r Retention) Cutoff(now time.Time) time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return startOfDay.AddDate(0, 0, -r.Days).UTC()
}
