package booking

import (
	"fmt"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// Segment is the maximal contiguous run of dates a booking occupies within
// its lane, as seen through the visible date axis. Segments are rendering
// geometry only: derived on demand, never persisted, and rebuilt whenever the
// axis or lane contents change.
type Segment struct {
	BookingID int64
	Start     time.Time
	End       time.Time
	Dates     []time.Time
}

// ID identifies the segment within a rebuild: the owning booking plus the
// run's start date. Stable as long as the lane contents don't change.
func (s *Segment) ID() string {
	return fmt.Sprintf("%d@%s", s.BookingID, dateutil.DayKey(s.Start))
}

// Contains reports whether the segment covers the given date.
func (s *Segment) Contains(date time.Time) bool {
	d := dateutil.TruncateToDay(date)
	return !d.Before(s.Start) && !d.After(s.End)
}

// BuildSegments walks the date axis in order and collects the booking's
// contiguous runs: each date with an assignment extends the open segment, a
// gap (or the axis end) closes it. A booking without date gaps yields exactly
// one segment spanning its whole visible range.
func BuildSegments(b *Booking, axis []time.Time) []Segment {
	var segments []Segment
	var open *Segment

	for _, date := range axis {
		if b.AssignmentOn(date) == nil {
			if open != nil {
				segments = append(segments, *open)
				open = nil
			}
			continue
		}
		d := dateutil.TruncateToDay(date)
		if open == nil {
			open = &Segment{BookingID: b.ID, Start: d, End: d, Dates: []time.Time{d}}
			continue
		}
		open.End = d
		open.Dates = append(open.Dates, d)
	}
	if open != nil {
		segments = append(segments, *open)
	}
	return segments
}

// LaneSegments builds the segments of every booking in the lane, in booking
// placement order.
func LaneSegments(l *Lane, axis []time.Time) []Segment {
	var segments []Segment
	for _, b := range l.Bookings {
		segments = append(segments, BuildSegments(b, axis)...)
	}
	return segments
}
