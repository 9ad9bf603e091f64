package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/rearrange"
)

func (a *App) swapCmd() *cobra.Command {
	var (
		bookingID int64
		fromDate  string
		toDate    string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap two day entries of a booking",
		Long: `Swap the day entries of one booking between two dates.

Both dates must fall inside the same contiguous run of the booking's
days. When either date already has a guide or vehicle assigned, the
swap requires confirmation; confirming cancels those assignments
before the entries move.`,
		Example: `  tourboard swap --booking=42 --from=2025-01-15 --to=2025-01-17
  tourboard swap --booking=42 --from=2025-01-15 --to=2025-01-17 --yes`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}
			if bookingID == 0 {
				return fmt.Errorf("--booking is required")
			}

			from, err := dateutil.ParseDate(fromDate)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			to, err := dateutil.ParseDate(toDate)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}

			if dateutil.SameDay(from, to) {
				return fmt.Errorf("--from and --to are the same date")
			}

			return a.runSwap(context.Background(), bookingID, from, to, yes)
		},
	}

	cmd.Flags().Int64Var(&bookingID, "booking", 0, "Booking ID (required)")
	cmd.Flags().StringVar(&fromDate, "from", "", "Source date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&toDate, "to", "", "Target date (YYYY-MM-DD, required)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Proceed without asking when the swap conflicts with existing assignments")

	return cmd
}

func (a *App) runSwap(ctx context.Context, bookingID int64, from, to time.Time, yes bool) error {
	// A window spanning both dates is enough to place the booking on a board.
	lo, hi := from, to
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	bookings, err := a.svc.LoadBookingsInRange(ctx, lo, hi)
	if err != nil {
		return fmt.Errorf("loading bookings: %w", err)
	}

	window := &dateutil.DateRange{Start: lo, End: hi}
	board := booking.NewBoard(window, bookings)

	target := board.Booking(bookingID)
	if target == nil {
		return fmt.Errorf("booking #%d has no day entries between %s and %s",
			bookingID, dateutil.DayKey(lo), dateutil.DayKey(hi))
	}

	ctrl := rearrange.NewController(a.svc, a.store, rearrange.Callbacks{})

	if err := ctrl.BeginDrag(board, target.Lane, from); err != nil {
		return fmt.Errorf("booking #%d has no entry on %s: %w", bookingID, dateutil.DayKey(from), err)
	}

	needsConfirm, err := ctrl.Drop(ctx, target.Lane, to)
	if err != nil {
		return fmt.Errorf("swap rejected: %w", err)
	}

	if needsConfirm {
		pending := ctrl.PendingSwap()
		printConflicts(pending)

		if !yes && !promptYesNo("Proceed anyway? Existing assignments will be cancelled.") {
			ctrl.Abort()
			fmt.Println("Swap aborted.")
			return nil
		}
		if err := ctrl.Confirm(ctx); err != nil {
			return fmt.Errorf("applying swap: %w", err)
		}
	}

	for _, w := range ctrl.Warnings() {
		fmt.Println(formatWarn("warning: " + w))
	}
	fmt.Printf("Swapped booking #%d: %s <-> %s\n",
		bookingID, dateutil.DayKey(from), dateutil.DayKey(to))
	return nil
}

func printConflicts(p *rearrange.Pending) {
	if p == nil {
		return
	}
	if p.Unknown {
		fmt.Println(formatWarn("Could not check assignment status:"))
		if p.CheckErr != nil {
			fmt.Printf("  %s\n", formatMuted(p.CheckErr.Error()))
		}
		fmt.Println("  Existing guide/vehicle assignments may be silently dropped.")
		return
	}
	fmt.Println(formatWarn("Assignments already exist on the affected dates:"))
	for _, c := range p.Conflicts {
		line := fmt.Sprintf("  %s  %s", dateutil.DayKey(c.Date), formatKey(c.LocationKey))
		if c.Status.GuideName != "" {
			line += "  guide: " + c.Status.GuideName
		}
		if c.Status.VehicleInfo != "" {
			line += "  vehicle: " + c.Status.VehicleInfo
		}
		fmt.Println(line)
	}
}
