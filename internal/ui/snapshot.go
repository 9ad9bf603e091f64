package ui

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/rearrange"
)

func (a *App) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the board recovery snapshot",
		Long: `Print the latest board snapshot written after a swap. The snapshot
is what the board offers to restore from after a crash or an
interrupted session.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}

			snap, err := a.store.Latest(context.Background())
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}
			if snap == nil {
				fmt.Println("No snapshot recorded.")
				return nil
			}

			fmt.Printf("%s version %d, taken %s\n",
				formatHeader("Snapshot"), snap.Version, snap.CreatedAt.Format("2006-01-02 15:04:05"))
			for _, b := range snap.Bookings {
				fmt.Printf("  #%d\n", b.BookingID)
				entries := append([]rearrange.EntryState(nil), b.Entries...)
				sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
				for _, e := range entries {
					fmt.Printf("    %s  %-8s %s\n", e.Date, formatKey(e.Key), formatMuted(e.Title))
				}
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the recovery snapshot",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}
			if err := a.store.Clear(context.Background()); err != nil {
				return fmt.Errorf("clearing snapshot: %w", err)
			}
			fmt.Println("Snapshot cleared.")
			return nil
		},
	})

	return cmd
}
