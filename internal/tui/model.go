// Package tui provides the terminal user interface for tourboard.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/config"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/demand"
	"github.com/qhdzhm/happy-sub000/internal/rearrange"
	"github.com/qhdzhm/happy-sub000/internal/tui/commands"
	"github.com/qhdzhm/happy-sub000/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeDrag         // A day-entry is grabbed, waiting for a drop target
	ModeConfirm      // Conflict confirmation modal is shown
	ModeDemand       // Demand panel is open
	ModeMerge        // Selecting demand rows to merge manually
	ModeJump         // Typing a date to jump the window to
)

// Position represents a cursor position on the board grid.
type Position struct {
	Lane int // Lane row index
	Day  int // Index into the window's date axis
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	svc  assignment.Service
	ctrl *rearrange.Controller
	agg  *demand.Aggregator
	cfg  *config.Config

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// State
	window  *dateutil.DateRange
	board   *booking.Board
	cursor  Position
	mode    Mode
	loading bool

	// Demand panel state
	demandDate    time.Time
	demandStats   []demand.Stat
	demandCursor  int
	mergeSelected map[string]bool

	// Components
	jumpInput textinput.Model

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string
	statusTime time.Time

	// Recovery snapshot left by an earlier session, if any
	recoverySnap *rearrange.Snapshot

	// Error state
	err error

	// Injectable clock for span fallbacks and "today" highlighting
	now func() time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock sets the clock used for span fallbacks and today highlighting.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new TUI model.
func New(svc assignment.Service, store rearrange.Store, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}

	window := windowFromConfig(cfg)

	jump := textinput.New()
	jump.Placeholder = "YYYY-MM-DD"
	jump.CharLimit = 10
	jump.Width = 12

	m := &Model{
		svc:    svc,
		cfg:    cfg,
		theme:  t,
		styles: NewStyles(t),
		window: window,
		cursor: Position{Lane: 0, Day: 0},
		mode:   ModeNormal,
		now:    time.Now,

		jumpInput: jump,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.agg = demand.New(svc, cfg.MergeGroups())
	m.ctrl = rearrange.NewController(svc, store, rearrange.Callbacks{
		OnUpdate: func(e rearrange.Event) error {
			return svc.PersistSchedule(context.Background(), e.BookingID, e.Entries)
		},
	})

	return m
}

// windowFromConfig builds the initial visible window.
func windowFromConfig(cfg *config.Config) *dateutil.DateRange {
	start, err := dateutil.ParseDate(cfg.Board.StartDate)
	if err != nil {
		start = dateutil.TruncateToDay(time.Now())
	}
	days := cfg.Board.WindowDays
	if days < 1 {
		days = 14
	}
	return &dateutil.DateRange{
		Start: start,
		End:   start.AddDate(0, 0, days-1),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadBoard(m.svc, m.window),
		commands.CheckRecovery(m.ctrl),
	)
}

// cursorDate returns the date under the cursor, clamped to the axis.
func (m Model) cursorDate() time.Time {
	axis := m.window.Axis()
	day := m.cursor.Day
	if day < 0 {
		day = 0
	}
	if day >= len(axis) {
		day = len(axis) - 1
	}
	return axis[day]
}

// setStatus shows a temporary status message.
func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusTime = time.Now().Add(3 * time.Second)
}

// rebuildBoard packs the loaded bookings into lanes for the current window.
func (m *Model) rebuildBoard(bookings []*booking.Booking) {
	m.board = booking.NewBoardAt(m.window, bookings, m.now)
	if m.cursor.Lane >= len(m.board.Lanes) && len(m.board.Lanes) > 0 {
		m.cursor.Lane = len(m.board.Lanes) - 1
	}
	LogBoard(m.board, "rebuild")
	for _, w := range m.board.Warnings {
		LogSpanWarning(w)
	}
}

// Run starts the TUI.
func Run(svc assignment.Service, store rearrange.Store, cfg *config.Config) error {
	return RunWithDebug(svc, store, cfg, false)
}

// RunWithDebug starts the TUI with optional debug logging.
func RunWithDebug(svc assignment.Service, store rearrange.Store, cfg *config.Config, debug bool) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	model := New(svc, store, cfg)
	p := tea.NewProgram(*model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
