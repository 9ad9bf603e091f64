package ui

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings in a date range",
		Long: `List bookings whose day entries fall within a date range.

If no dates are specified, lists today's bookings.
If only --start is specified, lists bookings for that single day.
If both --start and --end are specified, lists bookings in that range (inclusive).`,
		Example: `  tourboard list
  tourboard list --start=2025-01-15
  tourboard list --start=2025-01-15 --end=2025-01-20`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}

			dateRange, err := dateutil.NewDateRange(startDate, endDate)
			if err != nil {
				return err
			}

			bookings, err := a.svc.LoadBookingsInRange(context.Background(), dateRange.Start, dateRange.End)
			if err != nil {
				return fmt.Errorf("loading bookings: %w", err)
			}

			if len(bookings) == 0 {
				fmt.Println("No bookings found in the specified date range.")
				return nil
			}

			// Row prefix: "  2006-01-02  KEY----- " = ~25 cells
			nameWidth := columnWidth(25, 16)

			for i, b := range bookings {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("%s #%d  %s  %d pax",
					formatHeader("==="), b.ID, b.ContactName, b.Pax)
				if b.ContactPhone != "" {
					fmt.Printf("  %s", formatMuted(b.ContactPhone))
				}
				fmt.Println()

				days := make([]string, 0, len(b.Days))
				for day := range b.Days {
					days = append(days, day)
				}
				sort.Strings(days)

				for _, day := range days {
					entry := b.Days[day]
					fmt.Printf("  %s  %-8s %s\n",
						day, formatKey(entry.Key), formatMuted(truncate(entry.Name, nameWidth)))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")

	return cmd
}
