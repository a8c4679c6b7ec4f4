package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/bastion/pkg/console/modal"
)

// formModalDimensions returns the content width/height for the form modal.
func (m Model) formModalDimensions() (int, int) {
	modalWidth := m.Width * 80 / 100
	if modalWidth > 90 {
		modalWidth = 90
	}
	if modalWidth < 50 {
		modalWidth = 50
	}

	modalHeight := m.Height * 85 / 100
	if modalHeight > 35 {
		modalHeight = 35
	}
	if modalHeight < 20 {
		modalHeight = 20
	}

	return modalWidth, modalHeight
}

// renderFormModal draws the open wizard: section tabs, the active section's
// fields, the inline error or success line and the key hints.
func (m Model) renderFormModal() string {
	fs := m.FormState
	if fs == nil {
		return ""
	}
	width, height := m.formModalDimensions()
	c := fs.Controller
	nav := c.Navigator()

	var tabs []string
	for i := 0; i < nav.Count(); i++ {
		label := fmt.Sprintf(" %d %s ", i+1, c.Catalog().Title(i))
		if i == nav.Index() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(modal.ModalTitle.Render(fs.Title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(fs.Form.View())
	b.WriteString("\n")

	switch {
	case c.Pending():
		b.WriteString(fs.Spinner.View() + " Submitting…")
	case c.Error() != "":
		b.WriteString(errorStyle.Render("✗ " + c.Error()))
	case c.Success() != "":
		b.WriteString(successStyle.Render("✓ " + c.Success()))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fs.hints()))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.Primary).
		Padding(0, 1).
		Width(width - 2).
		MaxHeight(height)
	return box.Render(b.String())
}
