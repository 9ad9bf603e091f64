package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeDrag:
		return m.handleDragKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeDemand:
		return m.handleDemandKeys(msg)
	case ModeMerge:
		return m.handleMergeKeys(msg)
	case ModeJump:
		return m.handleJumpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Navigation
	case "h", "left":
		if m.cursor.Day > 0 {
			m.cursor.Day--
		}
	case "l", "right":
		if m.cursor.Day < m.window.Days()-1 {
			m.cursor.Day++
		}
	case "j", "down":
		if m.board != nil && m.cursor.Lane < len(m.board.Lanes)-1 {
			m.cursor.Lane++
		}
	case "k", "up":
		if m.cursor.Lane > 0 {
			m.cursor.Lane--
		}

	// Window navigation
	case "H", "shift+left":
		m.window = m.window.Shift(-m.window.Days())
		m.loading = true
		return m, commands.LoadBoard(m.svc, m.window)
	case "L", "shift+right":
		m.window = m.window.Shift(m.window.Days())
		m.loading = true
		return m, commands.LoadBoard(m.svc, m.window)
	case "t":
		// Jump back to today
		start := dateutil.TruncateToDay(m.now())
		days := m.window.Days()
		m.window = &dateutil.DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
		m.cursor.Day = 0
		m.loading = true
		return m, commands.LoadBoard(m.svc, m.window)
	case "/":
		// Jump to a typed date
		m.mode = ModeJump
		m.jumpInput.SetValue("")
		m.jumpInput.Focus()
		return m, textinput.Blink

	// Grab the day-entry under the cursor
	case "g", " ":
		if m.board == nil {
			return m, nil
		}
		if err := m.ctrl.BeginDrag(m.board, m.cursor.Lane, m.cursorDate()); err != nil {
			m.setStatus("%v", err)
			return m, nil
		}
		m.mode = ModeDrag
		m.setStatus("Grabbed: h/l to pick target, Enter to drop, Esc to cancel")
		LogPhase(m.ctrl.Phase(), "grab")

	// Demand panel for the cursor date
	case "d":
		if m.board == nil {
			return m, nil
		}
		m.mode = ModeDemand
		m.demandCursor = 0
		m.loading = true
		return m, commands.BuildDemand(m.agg, m.cursorDate(), m.board.Lanes)

	// Copy the cursor cell to the clipboard
	case "y":
		return m.copyCursorCell()

	// Reload from server truth
	case "r":
		m.loading = true
		return m, commands.LoadBoard(m.svc, m.window)

	// Discard the recovery snapshot from an earlier session
	case "X":
		if m.recoverySnap == nil {
			return m, nil
		}
		return m, commands.DiscardRecovery(m.ctrl)
	}

	return m, nil
}

// handleDragKeys handles keys while a day-entry is grabbed.
func (m Model) handleDragKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		if m.cursor.Day > 0 {
			m.cursor.Day--
		}
	case "l", "right":
		if m.cursor.Day < m.window.Days()-1 {
			m.cursor.Day++
		}

	case "enter":
		m.loading = true
		LogPhase(m.ctrl.Phase(), "drop")
		return m, commands.Drop(m.ctrl, m.cursor.Lane, m.cursorDate())

	case "esc", "q":
		m.ctrl.CancelDrag()
		m.mode = ModeNormal
		m.statusMsg = ""
		LogPhase(m.ctrl.Phase(), "cancel drag")
	}

	return m, nil
}

// handleConfirmKeys handles the conflict confirmation modal.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.loading = true
		LogPhase(m.ctrl.Phase(), "confirm")
		return m, commands.ConfirmSwap(m.ctrl)

	case "n", "esc":
		m.ctrl.Abort()
		m.mode = ModeNormal
		m.setStatus("Swap aborted")
		LogPhase(m.ctrl.Phase(), "abort")
	}

	return m, nil
}

// handleDemandKeys handles the demand panel.
func (m Model) handleDemandKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.demandCursor < len(m.demandStats)-1 {
			m.demandCursor++
		}
	case "k", "up":
		if m.demandCursor > 0 {
			m.demandCursor--
		}

	// Enter manual merge selection
	case "m":
		m.mode = ModeMerge
		m.mergeSelected = make(map[string]bool)
		m.setStatus("Merge: Space to select rows, Enter to merge, Esc to cancel")

	// Reset manual merge, back to automatic grouping
	case "M":
		m.agg.ResetManualMerge()
		m.loading = true
		return m, commands.BuildDemand(m.agg, m.demandDate, m.board.Lanes)

	case "y":
		text := demandCopyText(m.demandDate, m.demandStats)
		if err := clipboard.WriteAll(text); err != nil {
			m.setStatus("Clipboard: %v", err)
		} else {
			m.setStatus("Demand copied to clipboard")
		}

	case "d", "esc", "q":
		m.mode = ModeNormal
		m.demandStats = nil
		m.statusMsg = ""
	}

	return m, nil
}

// handleMergeKeys handles manual merge row selection inside the demand panel.
func (m Model) handleMergeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.demandCursor < len(m.demandStats)-1 {
			m.demandCursor++
		}
	case "k", "up":
		if m.demandCursor > 0 {
			m.demandCursor--
		}

	case " ":
		if m.demandCursor < len(m.demandStats) {
			key := m.demandStats[m.demandCursor].Key
			if m.mergeSelected[key] {
				delete(m.mergeSelected, key)
			} else {
				m.mergeSelected[key] = true
			}
		}

	case "enter":
		keys := make([]string, 0, len(m.mergeSelected))
		for k := range m.mergeSelected {
			keys = append(keys, k)
		}
		if len(keys) < 2 {
			m.setStatus("Select at least two rows to merge")
			return m, nil
		}
		m.agg.SetManualMerge(keys)
		m.mode = ModeDemand
		m.mergeSelected = nil
		m.loading = true
		return m, commands.BuildDemand(m.agg, m.demandDate, m.board.Lanes)

	case "esc", "q":
		m.mode = ModeDemand
		m.mergeSelected = nil
		m.statusMsg = ""
	}

	return m, nil
}

// handleJumpKeys handles the jump-to-date prompt.
func (m Model) handleJumpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.jumpInput.Blur()
		return m, nil

	case "enter":
		start, err := dateutil.ParseDate(strings.TrimSpace(m.jumpInput.Value()))
		if err != nil {
			m.setStatus("Invalid date, use YYYY-MM-DD")
			return m, nil
		}
		days := m.window.Days()
		m.window = &dateutil.DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
		m.cursor.Day = 0
		m.mode = ModeNormal
		m.jumpInput.Blur()
		m.loading = true
		return m, commands.LoadBoard(m.svc, m.window)
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

// copyCursorCell copies the booking summary under the cursor.
func (m Model) copyCursorCell() (tea.Model, tea.Cmd) {
	if m.board == nil {
		return m, nil
	}
	bk, _ := m.board.SegmentAt(m.cursor.Lane, m.cursorDate())
	if bk == nil {
		m.setStatus("Nothing to copy here")
		return m, nil
	}

	var b strings.Builder
	b.WriteString(bk.ContactName)
	if bk.ContactPhone != "" {
		b.WriteString(" " + bk.ContactPhone)
	}
	if a := bk.AssignmentOn(m.cursorDate()); a != nil {
		b.WriteString(" " + a.Name)
	}
	if err := clipboard.WriteAll(b.String()); err != nil {
		m.setStatus("Clipboard: %v", err)
		return m, nil
	}
	m.setStatus("Copied")
	return m, nil
}
