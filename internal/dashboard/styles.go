package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sshfwd/sshfwd/internal/ui"
)

// Height breakpoint below which the footer is hidden.
const heightMinimal = 12

// Styles for the dashboard
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 1)

	unselectedStyle = lipgloss.NewStyle().
			Padding(0, 1)

	// Status-specific styles
	launchingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo)

	connectedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess)

	waitingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	stoppedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError)

	cancelledStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	// Text styles
	targetStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	outputStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorPrimary)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	summaryUpStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess).
			Bold(true)

	summaryDownStyle = lipgloss.NewStyle().
				Foreground(ui.ColorError).
				Bold(true)
)

// showFooter returns true if the terminal is tall enough for the footer.
func showFooter(height int) bool {
	return height >= heightMinimal
}
