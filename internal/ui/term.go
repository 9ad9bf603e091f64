package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the CLI output.
var (
	// Location keys: bold cyan so they stand out in tables
	colorKey = color.New(color.FgCyan, color.Bold)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Assigned demand rows: green, a guide is already arranged
	colorAssigned = color.New(color.FgGreen)

	// Warnings and conflicts: yellow
	colorWarn = color.New(color.FgYellow)

	// Merged rows: magenta marker
	colorMerged = color.New(color.FgMagenta)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// columnWidth returns the cells left for a variable-width column after the
// row's fixed overhead, never below min.
func columnWidth(overhead, min int) int {
	available := termWidth() - overhead
	if available < min {
		return min
	}
	return available
}

// truncate shortens s to at most width runes. Titles are mostly CJK, so
// this counts runes rather than bytes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatKey(s string) string {
	return colorKey.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatAssigned(s string) string {
	return colorAssigned.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatMerged(s string) string {
	return colorMerged.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
