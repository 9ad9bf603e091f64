package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/qhdzhm/happy-sub000/internal/tui/theme"
)

// Cell width of one day column, including padding.
const dayColWidth = 8

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	colorBg          lipgloss.Color
	colorBgHighlight lipgloss.Color
	colorBgSelection lipgloss.Color
	colorFg          lipgloss.Color
	colorFgMuted     lipgloss.Color
	colorAccent      lipgloss.Color
	colorDragging    lipgloss.Color
	colorConflict    lipgloss.Color
	colorMerged      lipgloss.Color
	colorWarning     lipgloss.Color

	// Title and headers
	TitleStyle          lipgloss.Style
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	LaneLabelStyle      lipgloss.Style

	// Cells
	EmptyCellStyle    lipgloss.Style
	SegmentCellStyle  lipgloss.Style
	CursorStyle       lipgloss.Style
	DraggingCellStyle lipgloss.Style

	// Demand panel
	DemandHeaderStyle   lipgloss.Style
	DemandRowStyle      lipgloss.Style
	DemandSelectedStyle lipgloss.Style
	DemandMergedStyle   lipgloss.Style
	DemandErrorStyle    lipgloss.Style

	// Modal
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalBodyStyle  lipgloss.Style
	ModalHintStyle  lipgloss.Style

	// Footer
	StatusStyle  lipgloss.Style
	WarningStyle lipgloss.Style
	HelpStyle    lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	s := &Styles{
		colorBg:          theme.Color(t.Bg),
		colorBgHighlight: theme.Color(t.BgHighlight),
		colorBgSelection: theme.Color(t.BgSelection),
		colorFg:          theme.Color(t.Fg),
		colorFgMuted:     theme.Color(t.FgMuted),
		colorAccent:      theme.Color(t.Accent),
		colorDragging:    theme.Color(t.Dragging),
		colorConflict:    theme.Color(t.Conflict),
		colorMerged:      theme.Color(t.Merged),
		colorWarning:     theme.Color(t.Warning),
	}

	s.TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(s.colorAccent)
	s.DayHeaderStyle = lipgloss.NewStyle().Foreground(s.colorFgMuted).Width(dayColWidth).Align(lipgloss.Center)
	s.DayHeaderTodayStyle = s.DayHeaderStyle.Foreground(s.colorAccent).Bold(true)
	s.LaneLabelStyle = lipgloss.NewStyle().Foreground(s.colorFgMuted).Width(4)

	s.EmptyCellStyle = lipgloss.NewStyle().Foreground(s.colorFgMuted).Width(dayColWidth).Align(lipgloss.Center)
	s.SegmentCellStyle = lipgloss.NewStyle().Width(dayColWidth).Align(lipgloss.Center)
	s.CursorStyle = lipgloss.NewStyle().Background(s.colorBgSelection).Bold(true).Width(dayColWidth).Align(lipgloss.Center)
	s.DraggingCellStyle = lipgloss.NewStyle().Foreground(s.colorBg).Background(s.colorDragging).Bold(true).Width(dayColWidth).Align(lipgloss.Center)

	s.DemandHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(s.colorAccent)
	s.DemandRowStyle = lipgloss.NewStyle().Foreground(s.colorFg)
	s.DemandSelectedStyle = lipgloss.NewStyle().Background(s.colorBgSelection).Bold(true)
	s.DemandMergedStyle = lipgloss.NewStyle().Foreground(s.colorMerged)
	s.DemandErrorStyle = lipgloss.NewStyle().Foreground(s.colorConflict)

	s.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Color(t.ModalBorder)).
		Padding(1, 2)
	s.ModalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(s.colorConflict)
	s.ModalBodyStyle = lipgloss.NewStyle().Foreground(s.colorFg)
	s.ModalHintStyle = lipgloss.NewStyle().Foreground(s.colorFgMuted)

	s.StatusStyle = lipgloss.NewStyle().Foreground(s.colorAccent)
	s.WarningStyle = lipgloss.NewStyle().Foreground(s.colorWarning)
	s.HelpStyle = lipgloss.NewStyle().Foreground(s.colorFgMuted)

	return s
}

// SegmentStyle returns the cell style tinted with a booking's location color.
func (s *Styles) SegmentStyle(hex string) lipgloss.Style {
	if hex == "" {
		return s.SegmentCellStyle.Foreground(s.colorFg)
	}
	return s.SegmentCellStyle.Foreground(lipgloss.Color(hex))
}
