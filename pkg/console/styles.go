package console

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("212")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")
	warningColor = lipgloss.Color("214")
	mutedColor   = lipgloss.Color("241")
	cyanColor    = lipgloss.Color("45")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236"))

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	activeMarkStyle = lipgloss.NewStyle().Foreground(successColor)
	planStyle       = lipgloss.NewStyle().Foreground(warningColor)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(primaryColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle    = lipgloss.NewStyle().Foreground(mutedColor)

	toastStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("22"))

	toastErrorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("52"))
)
