// Package theme provides color themes for the TUI.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Segment blocks, subtle highlight
	BgSelection string `toml:"bg_selection"` // Cursor, selection
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Past dates, muted elements
	Accent      string `toml:"accent"`       // Title, borders, today column
	Dragging    string `toml:"dragging"`     // Segment being dragged
	Conflict    string `toml:"conflict"`     // Conflicting assignments
	Merged      string `toml:"merged"`       // Merged demand rows
	Warning     string `toml:"warning"`      // Warnings, span fallbacks

	ModalBorder string `toml:"modal_border"`
	TextPrimary string `toml:"text_primary"`
	TextMuted   string `toml:"text_muted"`
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Catppuccin variants plus a plain light theme.
var builtin = map[string]*Theme{
	"mocha": {
		Name: "mocha",
		Bg:   "#1e1e2e", BgHighlight: "#313244", BgSelection: "#45475a",
		Fg: "#cdd6f4", FgMuted: "#6c7086", Accent: "#89b4fa",
		Dragging: "#f9e2af", Conflict: "#f38ba8", Merged: "#94e2d5", Warning: "#fab387",
	},
	"macchiato": {
		Name: "macchiato",
		Bg:   "#24273a", BgHighlight: "#363a4f", BgSelection: "#494d64",
		Fg: "#cad3f5", FgMuted: "#6e738d", Accent: "#8aadf4",
		Dragging: "#eed49f", Conflict: "#ed8796", Merged: "#8bd5ca", Warning: "#f5a97f",
	},
	"frappe": {
		Name: "frappe",
		Bg:   "#303446", BgHighlight: "#414559", BgSelection: "#51576d",
		Fg: "#c6d0f5", FgMuted: "#737994", Accent: "#8caaee",
		Dragging: "#e5c890", Conflict: "#e78284", Merged: "#81c8be", Warning: "#ef9f76",
	},
	"latte": {
		Name: "latte",
		Bg:   "#eff1f5", BgHighlight: "#ccd0da", BgSelection: "#bcc0cc",
		Fg: "#4c4f69", FgMuted: "#8c8fa1", Accent: "#1e66f5",
		Dragging: "#df8e1d", Conflict: "#d20f39", Merged: "#179299", Warning: "#fe640b",
	},
}

// Load returns a built-in theme by name. Falls back to mocha when the theme
// is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = "mocha"
	}
	name = strings.ToLower(name)

	t, ok := builtin[name]
	if !ok {
		if name != "mocha" {
			return Load("mocha")
		}
		return nil, fmt.Errorf("unknown theme %q", name)
	}

	copied := *t
	copied.applyDefaults()
	return &copied, nil
}

func (t *Theme) applyDefaults() {
	if t.ModalBorder == "" {
		t.ModalBorder = t.Accent
	}
	if t.TextPrimary == "" {
		t.TextPrimary = t.Fg
	}
	if t.TextMuted == "" {
		t.TextMuted = t.FgMuted
	}
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether name is a built-in theme.
func IsAvailable(name string) bool {
	_, ok := builtin[strings.ToLower(name)]
	return ok
}
