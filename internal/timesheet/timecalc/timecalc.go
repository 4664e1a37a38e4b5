// Package timecalc holds the wall-clock arithmetic shared by entry
// validation, aggregation and report rendering. Clock values are always
// zero-padded 24h "HH:MM" strings and dates are "YYYY-MM-DD".
package timecalc

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ClockLayout is the wire format of a time of day.
	ClockLayout = "15:04"
	// DateLayout is the wire format of a calendar date.
	DateLayout = time.DateOnly

	displayClockLayout = "3:04 PM"
	longDateLayout     = "Monday, January 2, 2006"
)

var (
	ErrInvalidClock = errors.New("invalid clock time, want HH:MM")
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD")
)

// ParseClock parses "HH:MM". Both values of a pair land on the same nominal
// date, so they can be subtracted directly.
func ParseClock(hhmm string) (time.Time, error) {
	if len(hhmm) != len(ClockLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, hhmm)
	}
	t, err := time.Parse(ClockLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, hhmm)
	}
	return t, nil
}

// ParseDate parses "YYYY-MM-DD" in UTC.
func ParseDate(yyyymmdd string) (time.Time, error) {
	if len(yyyymmdd) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, yyyymmdd)
	}
	t, err := time.Parse(DateLayout, yyyymmdd)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, yyyymmdd)
	}
	return t, nil
}

// DurationMinutes returns end - start in whole minutes. The result is zero
// or negative when end is not after start; callers decide what that means.
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s) / time.Minute), nil
}

// FormatDuration renders minutes as "2h 5m". Negative input renders as "0h 0m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ParseDuration is the inverse of FormatDuration.
func ParseDuration(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%dh %dm", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if h < 0 || m < 0 || m >= 60 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders "13:05" as "1:05 PM". Input that is not a valid
// clock time is returned unchanged.
func FormatClock(hhmm string) string {
	t, err := ParseClock(hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(displayClockLayout)
}

// FormatLongDate renders "2024-01-10" as "Wednesday, January 10, 2024".
// Input that is not a valid date is returned unchanged.
func FormatLongDate(yyyymmdd string) string {
	t, err := ParseDate(yyyymmdd)
	if err != nil {
		return yyyymmdd
	}
	return t.Format(longDateLayout)
}

// RoundHalfUp returns sum/count rounded half away from zero for
// non-negative sums, and 0 when count is not positive.
func RoundHalfUp(sum, count int) int {
	if count <= 0 {
		return 0
	}
	if sum < 0 {
		return -RoundHalfUp(-sum, count)
	}
	return (sum*2 + count) / (2 * count)
}
