// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/demand"
	"github.com/qhdzhm/happy-sub000/internal/rearrange"
)

// BoardLoadedMsg is sent when the booking window has been loaded.
type BoardLoadedMsg struct {
	Bookings []*booking.Booking
}

// DropResultMsg is sent after a drop has been processed by the controller.
type DropResultMsg struct {
	NeedsConfirm bool
	Warnings     []string
	Err          error
}

// SwapConfirmedMsg is sent after a confirmed swap has been applied.
type SwapConfirmedMsg struct {
	Warnings []string
	Err      error
}

// DemandMsg is sent when demand rows for a date are ready.
type DemandMsg struct {
	Date  time.Time
	Stats []demand.Stat
}

// RecoveryMsg carries the recovery snapshot found at startup, or nil.
type RecoveryMsg struct {
	Snap *rearrange.Snapshot
	Err  error
}

// RecoveryDiscardedMsg is sent after the recovery snapshot has been deleted.
type RecoveryDiscardedMsg struct {
	Err error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadBoard loads the bookings covering the visible window.
func LoadBoard(svc assignment.Service, window *dateutil.DateRange) tea.Cmd {
	return func() tea.Msg {
		bookings, err := svc.LoadBookingsInRange(context.Background(), window.Start, window.End)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return BoardLoadedMsg{Bookings: bookings}
	}
}

// Drop runs the controller's drop against the service.
func Drop(ctrl *rearrange.Controller, laneIndex int, target time.Time) tea.Cmd {
	return func() tea.Msg {
		needsConfirm, err := ctrl.Drop(context.Background(), laneIndex, target)
		return DropResultMsg{
			NeedsConfirm: needsConfirm,
			Warnings:     ctrl.Warnings(),
			Err:          err,
		}
	}
}

// ConfirmSwap applies the pending swap after the user accepted the conflicts.
func ConfirmSwap(ctrl *rearrange.Controller) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Confirm(context.Background())
		return SwapConfirmedMsg{Warnings: ctrl.Warnings(), Err: err}
	}
}

// CheckRecovery looks for a snapshot left behind by an earlier session.
func CheckRecovery(ctrl *rearrange.Controller) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctrl.RecoverySnapshot(context.Background())
		return RecoveryMsg{Snap: snap, Err: err}
	}
}

// DiscardRecovery deletes the recovery snapshot.
func DiscardRecovery(ctrl *rearrange.Controller) tea.Cmd {
	return func() tea.Msg {
		return RecoveryDiscardedMsg{Err: ctrl.DiscardRecovery(context.Background())}
	}
}

// BuildDemand aggregates location demand for the given date.
func BuildDemand(agg *demand.Aggregator, date time.Time, lanes []*booking.Lane) tea.Cmd {
	return func() tea.Msg {
		stats := agg.Build(context.Background(), date, lanes)
		return DemandMsg{Date: date, Stats: stats}
	}
}
