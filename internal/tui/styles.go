package tui

import "github.com/charmbracelet/lipgloss"

// Shared palette
const (
	colorAccent = lipgloss.Color("205")
	colorBorder = lipgloss.Color("240")
	colorDim    = lipgloss.Color("241")
	colorText   = lipgloss.Color("252")
	colorError  = lipgloss.Color("196")
)

var (
	// TitleStyle is used for picker titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted picker items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	// NormalItemStyle is used for non-selected picker items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(colorText)

	// ErrorStyle is used for full-screen error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// HelpOverlayStyle frames the expanded key help on the board.
	HelpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2).
				MarginTop(2)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	cardStyle = lipgloss.NewStyle().
			Foreground(colorText)

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)
)
