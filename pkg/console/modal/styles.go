package modal

import "github.com/charmbracelet/lipgloss"

// Accent colors, one per Variant. They follow the console palette.
var (
	Primary = lipgloss.Color("212")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("214")
	Info    = lipgloss.Color("45")
	Muted   = lipgloss.Color("241")
	Success = lipgloss.Color("42")

	surface   = lipgloss.Color("238")
	highlight = lipgloss.Color("237")
	text      = lipgloss.Color("252")
	textHi    = lipgloss.Color("255")
)

func buttonStyle(bg lipgloss.Color, bold bool) lipgloss.Style {
	fg := textHi
	if bg == surface {
		fg = text
	}
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Bold(bold).Padding(0, 2)
}

// Button styles. Danger buttons look like normal ones until focused.
var (
	Button              = buttonStyle(surface, false)
	ButtonFocused       = buttonStyle(Primary, true)
	ButtonDanger        = buttonStyle(surface, false)
	ButtonDangerFocused = buttonStyle(Error, true)
)

// Text styles
var (
	ModalTitle = lipgloss.NewStyle().Bold(true)
	MutedText  = lipgloss.NewStyle().Foreground(Muted)
	Body       = lipgloss.NewStyle()
)

// List styles
var (
	ListItemNormal   = lipgloss.NewStyle().Foreground(text)
	ListItemSelected = lipgloss.NewStyle().Background(highlight).Foreground(textHi)
	ListItemFocused  = ListItemSelected.Bold(true)
	ListCursor       = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ListCurrent      = lipgloss.NewStyle().Foreground(Success)
	ListFilterPrompt = lipgloss.NewStyle().Foreground(Info)
)
