package dates

import "time"

// Relative day keywords.
const (
	Today     = "today"
	Tomorrow  = "tomorrow"
	Yesterday = "yesterday"
)

// RelativeKeyword returns the relative day keyword describing date as seen
// from now. Only today, tomorrow and yesterday have keywords; any other
// distance reports false.
func RelativeKeyword(date, now time.Time) (string, bool) {
	delta := DaysBetween(now, date)
	switch {
	case delta == 0:
		return Today, true
	case delta == 1 && civil(date).After(civil(now)):
		return Tomorrow, true
	case delta == -1:
		return Yesterday, true
	default:
		return "", false
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
