// Package dates parses the strftime-style date formats used to name daily
// notes and computes calendar-day distances between dates.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// DefaultFormat is the daily note filename format when a vault configures none.
const DefaultFormat = "%Y-%m-%d"

// DateLayout is the Go layout for canonical YYYY-MM-DD dates.
const DateLayout = "2006-01-02"

// ParseWithFormat parses s using a strftime-style format.
//
// Parsing is strict: the input must be exactly what the format would produce
// for the parsed date, so "2024-1-1" is rejected under "%Y-%m-%d".
func ParseWithFormat(s, format string) (time.Time, error) {
	if format == "" {
		format = DefaultFormat
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid date: empty")
	}

	t, err := timefmt.Parse(s, format)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q for format %q: %w", s, format, err)
	}
	if timefmt.Format(t, format) != s {
		return time.Time{}, fmt.Errorf("invalid date %q for format %q", s, format)
	}
	return t, nil
}

// FormatWithFormat renders t using a strftime-style format.
func FormatWithFormat(t time.Time, format string) string {
	if format == "" {
		format = DefaultFormat
	}
	return timefmt.Format(t, format)
}

// ValidateFormat checks that a format can name a date and read it back.
func ValidateFormat(format string) error {
	sample := time.Date(2024, time.November, 23, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseWithFormat(FormatWithFormat(sample, format), format)
	if err != nil {
		return err
	}
	if DaysBetween(sample, parsed) != 0 {
		return fmt.Errorf("format %q does not identify a single day", format)
	}
	return nil
}

// DaysBetween returns the number of calendar days from a to b.
// Only the year, month and day of each value are considered, so the result is
// unaffected by time of day, location or daylight saving transitions.
func DaysBetween(a, b time.Time) int {
	ca := civil(a)
	cb := civil(b)
	return int(cb.Sub(ca).Hours() / 24)
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
