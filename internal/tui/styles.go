package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#E8A87C")
	secondaryColor = lipgloss.Color("#85DCB0")
	errorColor     = lipgloss.Color("#E85D75")
	dimTextColor   = lipgloss.Color("#9CA3AF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	locationStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	iconSuccess = "✓"
	iconError   = "✗"
)
