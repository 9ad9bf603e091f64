// Package booking defines the core domain types for the tour schedule board:
// bookings with per-day location assignments, the lanes they are packed into,
// and the contiguous segments they occupy.
package booking

import (
	"errors"
	"sort"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// Domain errors.
var (
	ErrNoAssignment    = errors.New("booking has no assignment on that date")
	ErrBookingNotFound = errors.New("booking not found")
)

// LocationAssignment is one day-entry of a booking: where the party is
// destined on that date, plus the order-derived metadata carried along.
// It lives as long as the day-entry it is attached to; a swap moves the
// whole object, a reload replaces it.
type LocationAssignment struct {
	Name     string // raw tour title as it appears on the order
	Key      string // normalized location key
	Color    string // color tag derived from the key
	TourID   int64
	TourType string

	// ScheduleID is the external schedule-record identifier, when the
	// assignment service already knows about this day-entry.
	ScheduleID *int64

	Pax     int
	Pickup  string
	Dropoff string
	Remarks string
}

// Booking is a multi-day booking occupying one lane on the board.
// Days maps canonical day keys (YYYY-MM-DD) to the assignment for that day.
// Bookings are mutated only through the rearrangement controller or replaced
// wholesale on reload.
type Booking struct {
	ID           int64
	ContactName  string
	ContactPhone string
	Pax          int

	// Explicit order attributes; may be zero when the order carries no
	// usable range. Day keys take precedence for span derivation.
	StartDate time.Time
	EndDate   time.Time

	Days map[string]*LocationAssignment

	// Lane is derived by AssignLanes and recomputed on every full reload.
	Lane int
}

// AssignmentOn returns the day-entry for the given date, or nil.
func (b *Booking) AssignmentOn(date time.Time) *LocationAssignment {
	if b.Days == nil {
		return nil
	}
	return b.Days[dateutil.DayKey(date)]
}

// SetAssignment attaches a day-entry for the given date, replacing any
// existing entry.
func (b *Booking) SetAssignment(date time.Time, a *LocationAssignment) {
	if b.Days == nil {
		b.Days = make(map[string]*LocationAssignment)
	}
	b.Days[dateutil.DayKey(date)] = a
}

// SortedDates returns the dates the booking occupies, in order.
// Day keys that fail to parse are skipped.
func (b *Booking) SortedDates() []time.Time {
	dates := make([]time.Time, 0, len(b.Days))
	for key := range b.Days {
		d, err := time.Parse(dateutil.DayKeyLayout, key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// SwapDays exchanges the two day-entries in place. Only the positions swap:
// each assignment keeps its own name, key, color and tour identity.
// Both dates must carry an assignment.
func (b *Booking) SwapDays(d1, d2 time.Time) error {
	k1, k2 := dateutil.DayKey(d1), dateutil.DayKey(d2)
	a1, ok1 := b.Days[k1]
	a2, ok2 := b.Days[k2]
	if !ok1 || !ok2 {
		return ErrNoAssignment
	}
	b.Days[k1], b.Days[k2] = a2, a1
	return nil
}

// DayEntry pairs a date with its assignment, for persistence.
type DayEntry struct {
	Date       time.Time
	Assignment *LocationAssignment
}

// Entries returns the booking's day-entries in date order.
func (b *Booking) Entries() []DayEntry {
	dates := b.SortedDates()
	entries := make([]DayEntry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, DayEntry{Date: d, Assignment: b.AssignmentOn(d)})
	}
	return entries
}

// SpanSource records how a booking's date span was derived.
type SpanSource int

const (
	// SpanFromDays means the span came from the per-day keys (normal case).
	SpanFromDays SpanSource = iota
	// SpanFromAttributes means the explicit start/end order attributes were used.
	SpanFromAttributes
	// SpanFallbackToday means nothing was derivable and the span defaulted
	// to today. Legacy behavior, surfaced as a warning by AssignLanes.
	SpanFallbackToday
)

// Span derives the booking's inclusive date interval: min/max of the day keys,
// falling back to the explicit start/end attributes, and finally to now().
// It never fails; the source tells the caller how trustworthy the result is.
func (b *Booking) Span(now func() time.Time) (start, end time.Time, src SpanSource) {
	if dates := b.SortedDates(); len(dates) > 0 {
		return dates[0], dates[len(dates)-1], SpanFromDays
	}
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && !b.EndDate.Before(b.StartDate) {
		return dateutil.TruncateToDay(b.StartDate), dateutil.TruncateToDay(b.EndDate), SpanFromAttributes
	}
	if now == nil {
		now = time.Now
	}
	today := dateutil.TruncateToDay(now())
	return today, today, SpanFallbackToday
}
