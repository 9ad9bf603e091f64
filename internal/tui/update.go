package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qhdzhm/happy-sub000/internal/rearrange"
	"github.com/qhdzhm/happy-sub000/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.BoardLoadedMsg:
		m.rebuildBoard(msg.Bookings)
		m.loading = false
		if len(m.board.Warnings) > 0 {
			m.setStatus("%d booking(s) missing date info, spans derived from fallback", len(m.board.Warnings))
		}
		return m, nil

	case commands.DropResultMsg:
		m.loading = false
		if errors.Is(msg.Err, rearrange.ErrDropRejected) {
			// The controller stays in Dragging on a rejected drop, so the
			// grab is still live. Keep drag mode so the user can pick
			// another day or Esc out.
			m.setStatus("Can't drop there: pick a day of the same trip, Esc to cancel")
			return m, nil
		}
		if msg.Err != nil {
			// The local swap may have been applied even when persistence
			// failed; reload so the board reflects the controller's truth.
			m.mode = ModeNormal
			m.setStatus("Error: %v", msg.Err)
			return m, commands.LoadBoard(m.svc, m.window)
		}
		if msg.NeedsConfirm {
			m.mode = ModeConfirm
			return m, nil
		}
		m.mode = ModeNormal
		m.setStatus("%s", swapStatus(msg.Warnings))
		return m, commands.LoadBoard(m.svc, m.window)

	case commands.SwapConfirmedMsg:
		m.loading = false
		m.mode = ModeNormal
		if msg.Err != nil {
			m.setStatus("Error: %v", msg.Err)
		} else {
			m.setStatus("%s", swapStatus(msg.Warnings))
		}
		return m, commands.LoadBoard(m.svc, m.window)

	case commands.RecoveryMsg:
		if msg.Err != nil {
			LogError("recovery", msg.Err)
			return m, nil
		}
		if msg.Snap != nil {
			m.recoverySnap = msg.Snap
			m.setStatus("Recovery snapshot v%d from %s found · X to discard",
				msg.Snap.Version, msg.Snap.CreatedAt.Format("2006-01-02 15:04"))
		}
		return m, nil

	case commands.RecoveryDiscardedMsg:
		if msg.Err != nil {
			m.setStatus("Error: %v", msg.Err)
			return m, nil
		}
		m.recoverySnap = nil
		m.setStatus("Recovery snapshot discarded")
		return m, nil

	case commands.DemandMsg:
		m.demandDate = msg.Date
		m.demandStats = msg.Stats
		if m.demandCursor >= len(msg.Stats) {
			m.demandCursor = 0
		}
		m.loading = false
		return m, nil

	case commands.ErrMsg:
		m.err = msg.Err
		m.loading = false
		m.setStatus("Error: %v", msg.Err)
		LogError("update", msg.Err)
		return m, nil

	case commands.StatusMsgCmd:
		m.setStatus("%s", msg.Msg)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return commands.ClearStatusMsg{}
		})

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	return m, nil
}

// swapStatus summarizes an applied swap for the status line.
func swapStatus(warnings []string) string {
	if len(warnings) == 0 {
		return "Swap applied"
	}
	return fmt.Sprintf("Swap applied with %d warning(s): %s", len(warnings), warnings[0])
}
