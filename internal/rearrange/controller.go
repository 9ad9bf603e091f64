package rearrange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

// Controller errors.
var (
	ErrNotIdle          = errors.New("a drag is already in progress")
	ErrNotDragging      = errors.New("no drag in progress")
	ErrNothingToConfirm = errors.New("no pending swap to confirm")
	ErrEmptyCell        = errors.New("cell has no booking segment")
	ErrDropRejected     = errors.New("drop must land in the drag's own lane and segment")
	ErrPersistFailed    = errors.New("persisting swapped schedule failed")
)

// Phase is the controller's interaction state. The phase field doubles as the
// mutual-exclusion gate: a new drag cannot begin until the previous one has
// reached PhaseIdle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhasePendingCheck
	PhaseConflictConfirm
	PhaseApplyingSwap
)

// String returns the phase name for logs and status lines.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhasePendingCheck:
		return "checking conflicts"
	case PhaseConflictConfirm:
		return "awaiting confirmation"
	case PhaseApplyingSwap:
		return "applying swap"
	default:
		return "unknown"
	}
}

// EventType identifies a host notification.
type EventType string

// EventSaveAll asks the host to persist the booking's full day-entry list.
const EventSaveAll EventType = "saveAll"

// Event is fired through OnUpdate after a successful local mutation that
// requires persistence.
type Event struct {
	Type      EventType
	BookingID int64
	Entries   []assignment.ScheduleEntry
}

// Callbacks connect the controller to the surrounding application.
type Callbacks struct {
	// OnUpdate is fired after the local swap is applied. A returned error is
	// surfaced as a persistence failure; the optimistic local swap stays in
	// place either way.
	OnUpdate func(Event) error

	// OnDataRefresh is requested after operations that may have changed
	// server-side truth, so the host reloads and rebuilds lanes from scratch.
	OnDataRefresh func()
}

// Conflict describes one side of the swap that already has a resource
// assigned (or whose status could not be determined).
type Conflict struct {
	Date        time.Time
	LocationKey string
	Status      assignment.Status
}

// Drag identifies the day-cell a drag started from.
type Drag struct {
	LaneIndex  int
	BookingID  int64
	SegmentID  string
	SourceDate time.Time
}

// Pending is the swap awaiting conflict confirmation.
type Pending struct {
	BookingID  int64
	SourceDate time.Time
	TargetDate time.Time
	SourceKey  string
	TargetKey  string
	Conflicts  []Conflict

	// Unknown is set when the conflict check itself failed: the user decides
	// whether to proceed without knowing the assignment status.
	Unknown  bool
	CheckErr error
}

// Controller orchestrates drag-start/drag-over/drop for day-entry swaps:
//
//	Idle → Dragging → PendingCheck → (ConflictConfirm | ApplyingSwap) → Idle
//
// It is meant for a single interactive operator: callers serialize through
// one event loop and the phase gate rejects overlapping drags.
type Controller struct {
	svc   assignment.Service
	store Store
	cb    Callbacks

	phase    Phase
	board    *booking.Board
	drag     *Drag
	pending  *Pending
	warnings []string
}

// NewController creates a Controller over the assignment service and the
// recovery snapshot store.
func NewController(svc assignment.Service, store Store, cb Callbacks) *Controller {
	return &Controller{svc: svc, store: store, cb: cb}
}

// Phase returns the current interaction phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// DragSource returns the active drag origin, or nil when idle.
func (c *Controller) DragSource() *Drag {
	return c.drag
}

// PendingSwap returns the swap awaiting confirmation, or nil.
func (c *Controller) PendingSwap() *Pending {
	return c.pending
}

// Warnings returns the non-blocking warnings collected by the last applied
// swap (failed compensations, snapshot save failures).
func (c *Controller) Warnings() []string {
	return c.warnings
}

// BeginDrag starts a drag from the day-cell at (laneIndex, sourceDate).
// Fails with ErrNotIdle while a previous drag has not reached Idle, and with
// ErrEmptyCell when no booking segment covers the cell.
func (c *Controller) BeginDrag(board *booking.Board, laneIndex int, sourceDate time.Time) error {
	if c.phase != PhaseIdle {
		return ErrNotIdle
	}

	bk, seg := board.SegmentAt(laneIndex, sourceDate)
	if bk == nil || seg == nil {
		return ErrEmptyCell
	}

	c.board = board
	c.drag = &Drag{
		LaneIndex:  laneIndex,
		BookingID:  bk.ID,
		SegmentID:  seg.ID(),
		SourceDate: dateutil.TruncateToDay(sourceDate),
	}
	c.phase = PhaseDragging
	return nil
}

// CancelDrag abandons the drag with no state change and no external calls.
func (c *Controller) CancelDrag() {
	if c.phase != PhaseDragging {
		return
	}
	c.reset()
}

// Drop attempts to drop the dragged day-entry on (laneIndex, targetDate).
//
// The same-container invariant is enforced before any network call: the drop
// must land in the drag's own lane, on a date covered by the drag's own
// segment of the same booking. Anything else is rejected with ErrDropRejected
// and the controller stays in Dragging with no state change.
//
// A valid drop runs the conflict check. If either side is already assigned,
// or the check itself fails, the controller parks in ConflictConfirm and the
// caller must Confirm or Abort. Otherwise the swap applies immediately.
// The returned bool reports whether confirmation is now required.
func (c *Controller) Drop(ctx context.Context, laneIndex int, targetDate time.Time) (bool, error) {
	if c.phase != PhaseDragging {
		return false, ErrNotDragging
	}

	target := dateutil.TruncateToDay(targetDate)
	if target.Equal(c.drag.SourceDate) {
		// Dropping back on the origin is a no-op.
		c.reset()
		return false, nil
	}

	if laneIndex != c.drag.LaneIndex {
		return false, ErrDropRejected
	}
	bk, seg := c.board.SegmentAt(laneIndex, target)
	if bk == nil || seg == nil || bk.ID != c.drag.BookingID || seg.ID() != c.drag.SegmentID {
		return false, ErrDropRejected
	}

	c.phase = PhasePendingCheck

	sourceKey := bk.AssignmentOn(c.drag.SourceDate).Key
	targetKey := bk.AssignmentOn(target).Key
	pending := &Pending{
		BookingID:  bk.ID,
		SourceDate: c.drag.SourceDate,
		TargetDate: target,
		SourceKey:  sourceKey,
		TargetKey:  targetKey,
	}

	srcStatus, srcErr := c.svc.GetAssignmentStatus(ctx, pending.SourceDate, sourceKey)
	tgtStatus, tgtErr := c.svc.GetAssignmentStatus(ctx, pending.TargetDate, targetKey)

	if srcErr != nil || tgtErr != nil {
		pending.Unknown = true
		pending.CheckErr = errors.Join(srcErr, tgtErr)
		c.pending = pending
		c.phase = PhaseConflictConfirm
		return true, nil
	}

	if srcStatus.Assigned {
		pending.Conflicts = append(pending.Conflicts, Conflict{
			Date: pending.SourceDate, LocationKey: sourceKey, Status: srcStatus,
		})
	}
	if tgtStatus.Assigned {
		pending.Conflicts = append(pending.Conflicts, Conflict{
			Date: pending.TargetDate, LocationKey: targetKey, Status: tgtStatus,
		})
	}

	c.pending = pending
	if len(pending.Conflicts) > 0 {
		c.phase = PhaseConflictConfirm
		return true, nil
	}

	return false, c.apply(ctx)
}

// Abort discards the pending swap: no external calls are made and the board
// is untouched.
func (c *Controller) Abort() {
	if c.phase != PhaseConflictConfirm {
		return
	}
	c.reset()
}

// Confirm proceeds with the pending swap after the user accepted the
// conflicts (or the unknown status).
func (c *Controller) Confirm(ctx context.Context) error {
	if c.phase != PhaseConflictConfirm {
		return ErrNothingToConfirm
	}
	return c.apply(ctx)
}

// apply cancels the affected assignments, swaps the two day-entries in
// place, saves the recovery snapshot and notifies the host. The terminal
// phase is Idle whether or not persistence succeeds: a failed persist leaves
// the optimistic local swap in place and is returned for the host to surface.
func (c *Controller) apply(ctx context.Context) error {
	c.phase = PhaseApplyingSwap
	c.warnings = nil
	pending := c.pending
	defer c.reset()

	// Best-effort compensation, strictly in sequence so a partial failure
	// leaves a predictable record of what was actually cancelled.
	for _, conflict := range pending.Conflicts {
		details, err := c.svc.GetAssignmentDetails(ctx, conflict.Date, conflict.LocationKey)
		if err != nil {
			c.warnings = append(c.warnings, fmt.Sprintf(
				"could not list assignments for %s %s: %v",
				dateutil.DayKey(conflict.Date), conflict.LocationKey, err))
			continue
		}
		reason := fmt.Sprintf("day swap %s ↔ %s",
			dateutil.DayKey(pending.SourceDate), dateutil.DayKey(pending.TargetDate))
		for _, d := range details {
			if err := c.svc.CancelAssignment(ctx, d.ID, reason); err != nil {
				c.warnings = append(c.warnings, fmt.Sprintf(
					"cancelling assignment %d failed: %v", d.ID, err))
			}
		}
	}

	bk := c.board.Booking(pending.BookingID)
	if bk == nil {
		return booking.ErrBookingNotFound
	}
	if err := bk.SwapDays(pending.SourceDate, pending.TargetDate); err != nil {
		return fmt.Errorf("swapping day entries: %w", err)
	}

	if c.store != nil {
		if err := c.store.Save(ctx, Capture(c.board)); err != nil {
			c.warnings = append(c.warnings, fmt.Sprintf("saving recovery snapshot: %v", err))
		}
	}

	if c.cb.OnUpdate != nil {
		event := Event{
			Type:      EventSaveAll,
			BookingID: bk.ID,
			Entries:   assignment.EntriesForBooking(bk),
		}
		if err := c.cb.OnUpdate(event); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}
	return nil
}

// RequestRefresh asks the host to reload from server truth.
func (c *Controller) RequestRefresh() {
	if c.cb.OnDataRefresh != nil {
		c.cb.OnDataRefresh()
	}
}

// RecoverySnapshot returns the last persisted snapshot, or nil.
func (c *Controller) RecoverySnapshot(ctx context.Context) (*Snapshot, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.Latest(ctx)
}

// DiscardRecovery clears the recovery store.
func (c *Controller) DiscardRecovery(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.drag = nil
	c.pending = nil
	c.board = nil
}
