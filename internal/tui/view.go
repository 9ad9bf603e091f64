package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/demand"
)

// View renders the TUI.
func (m Model) View() string {
	if m.board == nil {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderGrid())

	switch m.mode {
	case ModeConfirm:
		sections = append(sections, m.renderConflictModal())
	case ModeDemand, ModeMerge:
		sections = append(sections, m.renderDemandPanel())
	}

	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle() string {
	title := fmt.Sprintf("tourboard  %s .. %s",
		dateutil.DayKey(m.window.Start), dateutil.DayKey(m.window.End))
	if m.loading {
		title += "  (loading)"
	}
	return m.styles.TitleStyle.Render(title)
}

// renderGrid renders the lane-packed booking grid: one header row of dates,
// then one row per lane with each day-cell showing the location key.
func (m Model) renderGrid() string {
	axis := m.window.Axis()
	today := dateutil.TruncateToDay(m.now())

	// Header row
	cells := make([]string, 0, len(axis)+1)
	cells = append(cells, m.styles.LaneLabelStyle.Render(""))
	for _, d := range axis {
		style := m.styles.DayHeaderStyle
		if dateutil.SameDay(d, today) {
			style = m.styles.DayHeaderTodayStyle
		}
		cells = append(cells, style.Render(d.Format("01-02")))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, cells...)}

	for laneIdx := range m.board.Lanes {
		cells = cells[:0]
		cells = append(cells, m.styles.LaneLabelStyle.Render(fmt.Sprintf("L%d", laneIdx)))
		for dayIdx, d := range axis {
			cells = append(cells, m.renderCell(laneIdx, dayIdx, d))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if len(m.board.Lanes) == 0 {
		rows = append(rows, m.styles.HelpStyle.Render("  no bookings in this window"))
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderCell(laneIdx, dayIdx int, date time.Time) string {
	bk, _ := m.board.SegmentAt(laneIdx, date)

	label := "·"
	color := ""
	if bk != nil {
		if a := bk.AssignmentOn(date); a != nil {
			label = a.Key
			color = a.Color
		}
	}

	isCursor := laneIdx == m.cursor.Lane && dayIdx == m.cursor.Day
	if src := m.ctrl.DragSource(); src != nil &&
		src.LaneIndex == laneIdx && dateutil.SameDay(src.SourceDate, date) {
		return m.styles.DraggingCellStyle.Render(label)
	}
	if isCursor {
		return m.styles.CursorStyle.Render(label)
	}
	if bk == nil {
		return m.styles.EmptyCellStyle.Render(label)
	}
	return m.styles.SegmentStyle(color).Render(label)
}

// renderConflictModal renders the swap confirmation dialog.
func (m Model) renderConflictModal() string {
	pending := m.ctrl.PendingSwap()
	if pending == nil {
		return ""
	}

	var b strings.Builder
	if pending.Unknown {
		b.WriteString(m.styles.ModalTitleStyle.Render("Assignment status unknown"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.ModalBodyStyle.Render(
			fmt.Sprintf("Conflict check failed: %v", pending.CheckErr)))
		b.WriteString("\n")
		b.WriteString(m.styles.ModalBodyStyle.Render(
			"Existing guide/vehicle assignments may be silently dropped."))
	} else {
		b.WriteString(m.styles.ModalTitleStyle.Render("Existing assignments will be cancelled"))
		b.WriteString("\n")
		for _, c := range pending.Conflicts {
			line := fmt.Sprintf("%s %s", dateutil.DayKey(c.Date), c.LocationKey)
			if c.Status.GuideName != "" {
				line += "  guide: " + c.Status.GuideName
			}
			if c.Status.VehicleInfo != "" {
				line += "  vehicle: " + c.Status.VehicleInfo
			}
			b.WriteString("\n" + m.styles.ModalBodyStyle.Render(line))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.ModalHintStyle.Render("y/Enter proceed · n/Esc abort"))

	return m.styles.ModalStyle.Render(b.String())
}

// renderDemandPanel renders per-location demand for the selected date.
func (m Model) renderDemandPanel() string {
	var b strings.Builder
	header := fmt.Sprintf("Demand %s", dateutil.DayKey(m.demandDate))
	if m.agg.ManualMergeActive() {
		header += "  [manual merge]"
	}
	b.WriteString(m.styles.DemandHeaderStyle.Render(header))
	b.WriteString("\n")

	if len(m.demandStats) == 0 {
		b.WriteString(m.styles.HelpStyle.Render("  no departures on this date"))
		return m.styles.ModalStyle.Render(b.String())
	}

	for i, st := range m.demandStats {
		b.WriteString("\n" + m.renderDemandRow(i, st))
	}

	return m.styles.ModalStyle.Render(b.String())
}

func (m Model) renderDemandRow(i int, st demand.Stat) string {
	marker := "  "
	if m.mode == ModeMerge && m.mergeSelected[st.Key] {
		marker = "✓ "
	}

	line := fmt.Sprintf("%s%-8s %2d groups %3d pax", marker, st.Key, st.Count, st.TotalPax)
	switch {
	case st.StatusErr != nil:
		line += "  status unavailable"
	case st.Assigned:
		if st.GuideInfo != "" {
			line += "  " + st.GuideInfo
		}
		if st.VehicleInfo != "" {
			line += " / " + st.VehicleInfo
		}
	default:
		line += "  unassigned"
	}

	style := m.styles.DemandRowStyle
	switch {
	case i == m.demandCursor && (m.mode == ModeDemand || m.mode == ModeMerge):
		style = m.styles.DemandSelectedStyle
	case st.StatusErr != nil:
		style = m.styles.DemandErrorStyle
	case st.Merged:
		style = m.styles.DemandMergedStyle
	}
	return style.Render(line)
}

func (m Model) renderFooter() string {
	if m.mode == ModeJump {
		return "Jump to: " + m.jumpInput.View()
	}
	if m.statusMsg != "" {
		return m.styles.StatusStyle.Render(m.statusMsg)
	}
	return m.styles.HelpStyle.Render(m.helpLine())
}

func (m Model) helpLine() string {
	switch m.mode {
	case ModeDrag:
		return "h/l target · Enter drop · Esc cancel"
	case ModeConfirm:
		return "y proceed · n abort"
	case ModeDemand:
		return "j/k rows · m merge · M reset merge · y copy · Esc close"
	case ModeMerge:
		return "Space select · Enter merge · Esc cancel"
	default:
		return "h/j/k/l move · H/L window · t today · / jump · g grab · d demand · y copy · r reload · q quit"
	}
}

// demandCopyText builds the plain-text demand summary for the clipboard.
func demandCopyText(date time.Time, stats []demand.Stat) string {
	var b strings.Builder
	b.WriteString(dateutil.DayKey(date))
	for _, st := range stats {
		b.WriteString(fmt.Sprintf("\n%s %d组 %d人", st.Key, st.Count, st.TotalPax))
		if st.Assigned && st.GuideInfo != "" {
			b.WriteString(" " + st.GuideInfo)
		}
	}
	return b.String()
}
