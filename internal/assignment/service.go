// Package assignment talks to the external guide/vehicle assignment service.
// The business rules behind it are opaque to the board; this package only
// defines the operations the board consumes and their wire types.
package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/booking"
)

// Service errors.
var (
	ErrNotFound    = errors.New("assignment not found")
	ErrUnavailable = errors.New("assignment service unavailable")
)

// Status is the answer to "is (date, location) already assigned a resource".
type Status struct {
	Assigned    bool   `json:"isAssigned"`
	GuideName   string `json:"guideName,omitempty"`
	VehicleInfo string `json:"vehicleInfo,omitempty"`
}

// Detail identifies one concrete assignment record for (date, location).
type Detail struct {
	ID          int64  `json:"id"`
	GuideName   string `json:"guideName,omitempty"`
	VehicleInfo string `json:"vehicleInfo,omitempty"`
}

// ScheduleEntry is one day-entry of a booking, as the service persists it.
type ScheduleEntry struct {
	Date        time.Time
	Title       string
	LocationKey string
	TourID      int64
	TourType    string
	ScheduleID  *int64
	Pax         int
	Pickup      string
	Dropoff     string
	Remarks     string
}

// Service is the external collaborator consumed by the board.
//
// StatusProvider is the read-only slice of it needed by demand aggregation.
type Service interface {
	StatusProvider

	// GetAssignmentDetails lists the concrete assignment records for the
	// date and location key.
	GetAssignmentDetails(ctx context.Context, date time.Time, locationKey string) ([]Detail, error)

	// CancelAssignment cancels one assignment record, with a reason for the
	// operator log on the other side.
	CancelAssignment(ctx context.Context, id int64, reason string) error

	// PersistSchedule saves the full day-entry list for one booking.
	PersistSchedule(ctx context.Context, bookingID int64, entries []ScheduleEntry) error

	// LoadBookingsInRange returns the bookings whose spans touch the range.
	LoadBookingsInRange(ctx context.Context, start, end time.Time) ([]*booking.Booking, error)
}

// StatusProvider answers assignment-status lookups.
type StatusProvider interface {
	GetAssignmentStatus(ctx context.Context, date time.Time, locationKey string) (Status, error)
}

// EntriesForBooking converts a booking's day-entries to schedule entries for
// a PersistSchedule call.
func EntriesForBooking(b *booking.Booking) []ScheduleEntry {
	days := b.Entries()
	entries := make([]ScheduleEntry, 0, len(days))
	for _, day := range days {
		a := day.Assignment
		if a == nil {
			continue
		}
		entries = append(entries, ScheduleEntry{
			Date:        day.Date,
			Title:       a.Name,
			LocationKey: a.Key,
			TourID:      a.TourID,
			TourType:    a.TourType,
			ScheduleID:  a.ScheduleID,
			Pax:         a.Pax,
			Pickup:      a.Pickup,
			Dropoff:     a.Dropoff,
			Remarks:     a.Remarks,
		})
	}
	return entries
}
