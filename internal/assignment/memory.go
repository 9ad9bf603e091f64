package assignment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// CancelRecord records one cancellation issued against the service.
type CancelRecord struct {
	ID     int64
	Reason string
}

// Memory is an in-memory Service. It backs offline/demo runs and tests; the
// mutation log (cancellations, persisted schedules) is inspectable.
type Memory struct {
	mu sync.Mutex

	statuses map[string]Status
	details  map[string][]Detail
	bookings []*booking.Booking

	statusErrs map[string]error
	cancelErrs map[int64]error
	persistErr error

	cancelled []CancelRecord
	persisted map[int64][]ScheduleEntry
}

// NewMemory creates an empty in-memory service.
func NewMemory() *Memory {
	return &Memory{
		statuses:   make(map[string]Status),
		details:    make(map[string][]Detail),
		statusErrs: make(map[string]error),
		cancelErrs: make(map[int64]error),
		persisted:  make(map[int64][]ScheduleEntry),
	}
}

func statusKey(date time.Time, locationKey string) string {
	return fmt.Sprintf("%s|%s", dateutil.DayKey(date), locationKey)
}

// SetBookings replaces the booking set returned by LoadBookingsInRange.
func (m *Memory) SetBookings(bookings []*booking.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = bookings
}

// SetStatus seeds the assignment status for (date, locationKey).
func (m *Memory) SetStatus(date time.Time, locationKey string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[statusKey(date, locationKey)] = status
}

// SetDetails seeds the assignment records for (date, locationKey) and marks
// the pair assigned.
func (m *Memory) SetDetails(date time.Time, locationKey string, details []Detail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(date, locationKey)
	m.details[key] = details
	status := Status{Assigned: len(details) > 0}
	if len(details) > 0 {
		status.GuideName = details[0].GuideName
		status.VehicleInfo = details[0].VehicleInfo
	}
	m.statuses[key] = status
}

// FailStatus makes status lookups for (date, locationKey) return err.
func (m *Memory) FailStatus(date time.Time, locationKey string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErrs[statusKey(date, locationKey)] = err
}

// FailCancel makes cancellation of the given record return err.
func (m *Memory) FailCancel(id int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelErrs[id] = err
}

// FailPersist makes every PersistSchedule call return err.
func (m *Memory) FailPersist(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistErr = err
}

// Cancelled returns the cancellations issued so far, in call order.
func (m *Memory) Cancelled() []CancelRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CancelRecord, len(m.cancelled))
	copy(out, m.cancelled)
	return out
}

// Persisted returns the last schedule saved for the booking, or nil.
func (m *Memory) Persisted(bookingID int64) []ScheduleEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persisted[bookingID]
}

// GetAssignmentStatus implements StatusProvider.
func (m *Memory) GetAssignmentStatus(_ context.Context, date time.Time, locationKey string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(date, locationKey)
	if err := m.statusErrs[key]; err != nil {
		return Status{}, err
	}
	return m.statuses[key], nil
}

// GetAssignmentDetails implements Service.
func (m *Memory) GetAssignmentDetails(_ context.Context, date time.Time, locationKey string) ([]Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(date, locationKey)
	if err := m.statusErrs[key]; err != nil {
		return nil, err
	}
	return m.details[key], nil
}

// CancelAssignment implements Service.
func (m *Memory) CancelAssignment(_ context.Context, id int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.cancelErrs[id]; err != nil {
		return err
	}
	m.cancelled = append(m.cancelled, CancelRecord{ID: id, Reason: reason})
	return nil
}

// PersistSchedule implements Service.
func (m *Memory) PersistSchedule(_ context.Context, bookingID int64, entries []ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistErr != nil {
		return m.persistErr
	}
	saved := make([]ScheduleEntry, len(entries))
	copy(saved, entries)
	m.persisted[bookingID] = saved
	return nil
}

// LoadBookingsInRange implements Service. A booking is returned when its
// derived span touches the range.
func (m *Memory) LoadBookingsInRange(_ context.Context, start, end time.Time) ([]*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*booking.Booking
	for _, b := range m.bookings {
		bStart, bEnd, _ := b.Span(nil)
		if !bStart.After(end) && !bEnd.Before(start) {
			out = append(out, b)
		}
	}
	return out, nil
}
