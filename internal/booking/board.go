package booking

import (
	"time"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// Board holds one rebuilt view of the schedule: the visible date range, the
// bookings packed into lanes, and any span-derivation warnings collected
// along the way. Lane indices and segments are valid until the next Rebuild.
type Board struct {
	Range    *dateutil.DateRange
	Lanes    []*Lane
	Warnings []SpanWarning

	bookings []*Booking
	now      func() time.Time
}

// NewBoard packs the bookings into lanes for the given range.
func NewBoard(rng *dateutil.DateRange, bookings []*Booking) *Board {
	return NewBoardAt(rng, bookings, time.Now)
}

// NewBoardAt is NewBoard with an injectable clock for the span fallback.
func NewBoardAt(rng *dateutil.DateRange, bookings []*Booking, now func() time.Time) *Board {
	b := &Board{Range: rng, bookings: bookings, now: now}
	b.Rebuild()
	return b
}

// Rebuild recomputes lanes and warnings from scratch. Lane indices are never
// patched incrementally; any operation that may have changed server-side
// truth goes through a full reload and Rebuild.
func (b *Board) Rebuild() {
	b.Lanes, b.Warnings = AssignLanes(b.bookings, b.now)
}

// Axis returns the ordered full date axis of the visible window.
func (b *Board) Axis() []time.Time {
	return b.Range.Axis()
}

// Bookings returns the bookings backing the board.
func (b *Board) Bookings() []*Booking {
	return b.bookings
}

// Booking returns the booking with the given ID, or nil.
func (b *Board) Booking(id int64) *Booking {
	for _, bk := range b.bookings {
		if bk.ID == id {
			return bk
		}
	}
	return nil
}

// Lane returns the lane at the given index, or nil if out of range.
func (b *Board) Lane(index int) *Lane {
	if index < 0 || index >= len(b.Lanes) {
		return nil
	}
	return b.Lanes[index]
}

// SegmentAt returns the segment of the given lane that covers the date along
// with its owning booking, or nils when the cell is empty.
func (b *Board) SegmentAt(laneIndex int, date time.Time) (*Booking, *Segment) {
	lane := b.Lane(laneIndex)
	if lane == nil {
		return nil, nil
	}
	axis := b.Axis()
	for _, bk := range lane.Bookings {
		for _, seg := range BuildSegments(bk, axis) {
			if seg.Contains(date) {
				s := seg
				return bk, &s
			}
		}
	}
	return nil, nil
}
