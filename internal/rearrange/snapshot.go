// Package rearrange implements the drag/drop rearrangement of day-entries as
// a pure state machine whose phases drive rendering, decoupled from any
// rendering technology.
package rearrange

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// Snapshot is an explicit, versioned capture of the board's day-entries,
// saved to the recovery store after each applied swap. It replaces the old
// fixed-key browser draft: always written wholesale, never patched.
type Snapshot struct {
	ID        string         `json:"id"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Bookings  []BookingState `json:"bookings"`
}

// BookingState is one booking's day-entries inside a snapshot.
type BookingState struct {
	BookingID int64        `json:"bookingId"`
	Entries   []EntryState `json:"entries"`
}

// EntryState is the serializable form of one day-entry.
type EntryState struct {
	Date       string `json:"date"`
	Title      string `json:"title"`
	Key        string `json:"locationKey"`
	Color      string `json:"color"`
	TourID     int64  `json:"tourId"`
	TourType   string `json:"tourType"`
	ScheduleID *int64 `json:"scheduleId,omitempty"`
	Pax        int    `json:"pax"`
	Pickup     string `json:"pickup,omitempty"`
	Dropoff    string `json:"dropoff,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}

// Store is the recovery-store port. Save assigns the snapshot's version and
// overwrites wholesale; Latest returns nil without error when empty.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// Capture builds a snapshot of the board's current day-entries.
func Capture(board *booking.Board) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	for _, b := range board.Bookings() {
		state := BookingState{BookingID: b.ID}
		for _, entry := range b.Entries() {
			a := entry.Assignment
			state.Entries = append(state.Entries, EntryState{
				Date:       dateutil.DayKey(entry.Date),
				Title:      a.Name,
				Key:        a.Key,
				Color:      a.Color,
				TourID:     a.TourID,
				TourType:   a.TourType,
				ScheduleID: a.ScheduleID,
				Pax:        a.Pax,
				Pickup:     a.Pickup,
				Dropoff:    a.Dropoff,
				Remarks:    a.Remarks,
			})
		}
		snap.Bookings = append(snap.Bookings, state)
	}
	return snap
}

// MemoryStore is an in-memory Store for tests and offline runs.
type MemoryStore struct {
	snap    *Snapshot
	version int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	s.version++
	snap.Version = s.version
	copied := *snap
	s.snap = &copied
	return nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(_ context.Context) (*Snapshot, error) {
	return s.snap, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.snap = nil
	return nil
}
