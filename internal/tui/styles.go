package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Background(errorColor).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	badgeOKStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("42")).
			Foreground(lipgloss.Color("232")).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	shortageRowStyle = lipgloss.NewStyle().Foreground(warningColor)

	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	noticeStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)

	// Inline; a border would break the single-line row layout.
	editStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Underline(true)
)
