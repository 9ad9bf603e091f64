package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/config"
	"github.com/qhdzhm/happy-sub000/internal/db"
	"github.com/qhdzhm/happy-sub000/internal/location"
	"github.com/qhdzhm/happy-sub000/internal/rearrange"
	"github.com/qhdzhm/happy-sub000/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	svc    assignment.Service
	store  rearrange.Store
	sqlite *db.SQLite
	config *config.Config
	root   *cobra.Command
	debug  bool // Enable debug logging
}

// NewApp creates a new CLI application with the given config. The assignment
// service and snapshot store are opened lazily on first use.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "tourboard",
		Short: "A terminal board for tour operation scheduling",
		Long: `Tourboard lays multi-day tour bookings out on a date-by-lane grid.

Running without a subcommand opens the interactive board: move day
entries between dates, check assignment conflicts before a swap, and
inspect per-date location demand.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureService(); err != nil {
				return err
			}
			return tui.RunWithDebug(a.svc, a.store, a.config, a.debug)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to tourboard-debug.log)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.demandCmd())
	a.root.AddCommand(a.swapCmd())
	a.root.AddCommand(a.normalizeCmd())
	a.root.AddCommand(a.snapshotCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tourboard %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureService opens the assignment service and snapshot store. Offline
// mode backs the board with demo bookings and keeps snapshots in memory.
func (a *App) ensureService() error {
	if a.svc != nil {
		return nil
	}

	if a.config.Assignment.Offline {
		a.svc = assignment.NewDemo(time.Now())
		a.store = rearrange.NewMemoryStore()
		return nil
	}

	normalizer := location.NewNormalizer(a.config.NormalizerRules())
	a.svc = assignment.NewClient(a.config.Assignment.BaseURL, a.config.Assignment.Token, nil, normalizer)

	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	a.sqlite = store
	a.store = store
	return nil
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the snapshot store, if one was opened.
func (a *App) Close() error {
	if a.sqlite == nil {
		return nil
	}
	return a.sqlite.Close()
}
