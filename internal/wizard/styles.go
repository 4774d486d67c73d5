package wizard

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. The accent leans orange to echo ORC; status colors stay close to
// conventional terminal green/red.
var (
	colorAccent = lipgloss.Color("208")
	colorOK     = lipgloss.Color("78")
	colorFail   = lipgloss.Color("203")
	colorHint   = lipgloss.Color("110")
	colorFaint  = lipgloss.Color("245")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	stepStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorFaint)

	okStyle = lipgloss.NewStyle().
		Foreground(colorOK).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(colorFail).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorHint).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorHint).
			Padding(0, 1).
			MarginTop(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorFaint).
			Italic(true).
			MarginTop(1)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFaint).
			Padding(1, 2)
)

const (
	iconOK      = "✓"
	iconFail    = "✗"
	iconSpinner = "⏳"
	iconCursor  = "▸"
)

func renderHeader(text string) string {
	return titleStyle.Render("⚙ " + text)
}

func renderSectionHeader(text string) string {
	return stepStyle.Render(text)
}

func renderSuccess(text string) string {
	return okStyle.Render(iconOK + " " + text)
}

func renderError(text string) string {
	return failStyle.Render(iconFail + " " + text)
}

func renderInfo(text string) string {
	return hintStyle.Render(text)
}

func renderOption(selected bool, text string) string {
	if selected {
		return okStyle.Render(iconCursor + " " + text)
	}
	return labelStyle.Render("  " + text)
}

func renderStatusBar(text string) string {
	return footerStyle.Render(text)
}
