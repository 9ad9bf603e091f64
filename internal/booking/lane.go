package booking

import (
	"sort"
	"time"
)

// Lane is a non-overlapping track on the timeline. Its index is positional
// and recomputed on every full rebuild, never mutated incrementally.
type Lane struct {
	Index    int
	Bookings []*Booking

	// intervals mirrors Bookings with the derived spans, in placement order.
	intervals []interval
}

type interval struct {
	start time.Time
	end   time.Time
}

// overlaps is the closed-interval overlap test: two inclusive date intervals
// collide iff start1 <= end2 and end1 >= start2.
func (iv interval) overlaps(other interval) bool {
	return !iv.start.After(other.end) && !iv.end.Before(other.start)
}

// OccupantOn returns the booking holding a day-entry on the given date, or
// nil if no booking in the lane is assigned that day.
func (l *Lane) OccupantOn(date time.Time) *Booking {
	for _, b := range l.Bookings {
		if b.AssignmentOn(date) != nil {
			return b
		}
	}
	return nil
}

// SpanWarning reports a booking whose date span could not be derived from its
// day keys or order attributes and fell back to today.
type SpanWarning struct {
	BookingID int64
	Source    SpanSource
}

// AssignLanes packs bookings into the minimum number of non-overlapping lanes.
//
// Bookings are sorted by derived start date ascending (original order breaking
// ties) and greedily placed into the lowest-indexed lane whose existing
// intervals all avoid the candidate's interval. Processing by start time makes
// the greedy choice optimal: the lane count equals the maximum number of
// bookings simultaneously active on any single date.
//
// Every booking receives a lane; underivable spans default to today and are
// reported in the returned warnings rather than failing the layout.
func AssignLanes(bookings []*Booking, now func() time.Time) ([]*Lane, []SpanWarning) {
	if now == nil {
		now = time.Now
	}

	type candidate struct {
		b     *Booking
		iv    interval
		src   SpanSource
		order int
	}

	var warnings []SpanWarning
	candidates := make([]candidate, 0, len(bookings))
	for i, b := range bookings {
		if b == nil {
			continue
		}
		start, end, src := b.Span(now)
		if src == SpanFallbackToday {
			warnings = append(warnings, SpanWarning{BookingID: b.ID, Source: src})
		}
		candidates = append(candidates, candidate{b: b, iv: interval{start: start, end: end}, src: src, order: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].iv.start.Before(candidates[j].iv.start)
	})

	var lanes []*Lane
	for _, c := range candidates {
		placed := false
		for _, lane := range lanes {
			if lane.fits(c.iv) {
				lane.place(c.b, c.iv)
				placed = true
				break
			}
		}
		if !placed {
			lane := &Lane{Index: len(lanes)}
			lane.place(c.b, c.iv)
			lanes = append(lanes, lane)
		}
	}

	for _, lane := range lanes {
		for _, b := range lane.Bookings {
			b.Lane = lane.Index
		}
	}
	return lanes, warnings
}

// fits reports whether the interval avoids every interval already in the lane.
func (l *Lane) fits(iv interval) bool {
	for _, existing := range l.intervals {
		if existing.overlaps(iv) {
			return false
		}
	}
	return true
}

func (l *Lane) place(b *Booking, iv interval) {
	l.Bookings = append(l.Bookings, b)
	l.intervals = append(l.intervals, iv)
}
