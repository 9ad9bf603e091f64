// Package dateutil provides date parsing and date-axis utilities.
package dateutil

import (
	"errors"
	"time"
)

// DayKeyLayout is the canonical day-key format used across the board.
const DayKeyLayout = "2006-01-02"

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

// DateRange represents a validated date range, inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
// Returns an error if endDate is before startDate.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	var end time.Time
	if endDate == "" {
		end = start
	} else {
		end, err = ParseDate(endDate)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// Days returns the number of days in the range, inclusive.
func (r *DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Axis returns every date in the range in order, truncated to midnight.
func (r *DateRange) Axis() []time.Time {
	axis := make([]time.Time, 0, r.Days())
	end := TruncateToDay(r.End)
	for d := TruncateToDay(r.Start); !d.After(end); d = d.AddDate(0, 0, 1) {
		axis = append(axis, d)
	}
	return axis
}

// Shift returns a copy of the range moved by the given number of days.
func (r *DateRange) Shift(days int) *DateRange {
	return &DateRange{
		Start: r.Start.AddDate(0, 0, days),
		End:   r.End.AddDate(0, 0, days),
	}
}

// Contains reports whether t falls within the range (day precision).
func (r *DateRange) Contains(t time.Time) bool {
	d := TruncateToDay(t)
	return !d.Before(TruncateToDay(r.Start)) && !d.After(TruncateToDay(r.End))
}

// ParseDate parses a date string in YYYY-MM-DD format.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.Parse(DayKeyLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// DayKey formats t as its canonical YYYY-MM-DD key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return TruncateToDay(a).Equal(TruncateToDay(b))
}

// DaysBetween returns the number of whole days from a to b.
// Negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(TruncateToDay(b).Sub(TruncateToDay(a)).Hours() / 24)
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
