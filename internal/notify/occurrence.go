package notify

import (
	"fmt"
	"slices"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/validation"
)

// EveningHour is the local hour used for notifications hinted for the evening
const EveningHour = 20

// NextOccurrence returns the next time hhmm occurs after now, in now's location.
// A time equal to now rolls over to the next day.
func NextOccurrence(hhmm string, now time.Time) (time.Time, error) {
	offset, err := validation.ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute := int(offset/time.Hour), int(offset%time.Hour/time.Minute)
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}

// NextWeeklyOccurrence returns the next time hhmm occurs after now on one of
// days (0=Sunday..6=Saturday). No days means every day.
func NextWeeklyOccurrence(hhmm string, days []int, now time.Time) (time.Time, error) {
	at, err := NextOccurrence(hhmm, now)
	if err != nil {
		return time.Time{}, err
	}
	if len(days) == 0 {
		return at, nil
	}
	for range 7 {
		if slices.Contains(days, int(at.Weekday())) {
			return at, nil
		}
		at = at.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("no valid weekday in %v", days)
}
