package visit

import (
	"time"

	"github.com/intern-assistant/platform/internal/shared/errors"
)

// clockOffset is the fixed local offset. Timestamps are written and
// queried on this wall clock; no timezone database is consulted.
const clockOffset = 3 * time.Hour

// LocalNow returns the current UTC+3 wall-clock time.
func LocalNow() time.Time {
	return time.Now().UTC().Add(clockOffset)
}

// Window is a half-open interval [Start, End) covering one local
// calendar day. All visit-scoped queries use ts >= Start AND ts < End.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow resolves an optional ISO calendar date ("" means today on
// the local clock) to its day window.
func DayWindow(day string) (Window, error) {
	var midnight time.Time
	if day == "" {
		now := LocalNow()
		midnight = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			return Window{}, errors.Validation("invalid day, expected YYYY-MM-DD", map[string]string{
				"day": day,
			})
		}
		midnight = parsed
	}
	return Window{Start: midnight, End: midnight.Add(24 * time.Hour)}, nil
}

// Day returns the window's calendar date in ISO form.
func (w Window) Day() string {
	return w.Start.Format("2006-01-02")
}

// Contains reports whether a timestamp falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}
