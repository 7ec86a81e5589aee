package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#A78BFA") // Light purple
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorDanger    = lipgloss.Color("#EF4444") // Red (errors)
	colorMuted     = lipgloss.Color("#6B7280") // Gray
)

// Shared styles used by the progress view.
var (
	// Run label: "Syncing" / "Packaging".
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Muted text (counters, hints).
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Success counter.
	okStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	// Error text.
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	// Spinner style.
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)
)
