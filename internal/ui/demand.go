package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/demand"
)

func (a *App) demandCmd() *cobra.Command {
	var (
		date  string
		merge string
	)

	cmd := &cobra.Command{
		Use:   "demand",
		Short: "Show per-location demand for a date",
		Long: `Aggregate the day entries of one date into per-location demand:
group count, total passengers, and the assignment status of each
location. Locations that alias the same destination are merged.

--merge collapses an explicit set of location keys into one row
instead of the automatic groups, e.g. when two nearby tours share
a vehicle for the day.`,
		Example: `  tourboard demand
  tourboard demand --date=2025-01-15
  tourboard demand --date=2025-01-15 --merge=亚,布`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}

			dateRange, err := dateutil.NewDateRange(date, "")
			if err != nil {
				return err
			}
			day := dateRange.Start

			ctx := context.Background()
			bookings, err := a.svc.LoadBookingsInRange(ctx, day, day)
			if err != nil {
				return fmt.Errorf("loading bookings: %w", err)
			}
			board := booking.NewBoard(dateRange, bookings)

			agg := demand.New(a.svc, a.config.MergeGroups())
			if merge != "" {
				keys := splitKeys(merge)
				if len(keys) < 2 {
					return fmt.Errorf("--merge needs at least two location keys")
				}
				agg.SetManualMerge(keys)
			}

			stats := agg.Build(ctx, day, board.Lanes)
			printDemand(day.Format("2006-01-02"), stats, merge != "")
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&merge, "merge", "", "Comma-separated location keys to merge into one row")

	return cmd
}

func printDemand(day string, stats []demand.Stat, manual bool) {
	header := fmt.Sprintf("Demand for %s", day)
	if manual {
		header += " [manual merge]"
	}
	fmt.Println(formatHeader(header))

	if len(stats) == 0 {
		fmt.Println("  No day entries on this date.")
		return
	}

	// Indent plus "merged from " = ~18 cells
	mergedWidth := columnWidth(18, 16)

	for _, s := range stats {
		marker := " "
		if s.Merged {
			marker = formatMerged("+")
		}
		line := fmt.Sprintf("  %s %-8s %2d groups %3d pax  %s",
			marker, formatKey(s.Key), s.Count, s.TotalPax, demandStatus(s))
		fmt.Println(line)
		if s.Merged && len(s.MergedFrom) > 1 {
			from := truncate(strings.Join(s.MergedFrom, ", "), mergedWidth)
			fmt.Printf("      %s\n", formatMuted("merged from "+from))
		}
	}
}

func demandStatus(s demand.Stat) string {
	if s.StatusErr != nil {
		return formatWarn("status unavailable")
	}
	if !s.Assigned {
		return formatWarn("unassigned")
	}
	info := s.GuideInfo
	if s.VehicleInfo != "" {
		if info != "" {
			info += " / "
		}
		info += s.VehicleInfo
	}
	if info == "" {
		return formatAssigned("assigned")
	}
	return formatAssigned("assigned: " + info)
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
