package console

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md for a width-column terminal, falling back to
// the raw text when rendering fails.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(20, width-2)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// contentHeight is the height left for the main view below the header and
// above the footer and toast lines.
func (m Model) contentHeight() int {
	return max(3, m.Height-4)
}

// openDetail switches to the detail view of clientName and loads it.
func (m Model) openDetail(clientName string) (tea.Model, tea.Cmd) {
	m.Mode = ViewDetail
	m.DetailClient = clientName
	m.Detail = nil
	m.DetailNotFound = false
	m.Loading = true
	m.DetailView.SetContent("")
	m.DetailView.GotoTop()
	return m, m.fetchOrg(clientName)
}

// leaveDetail returns to the list.
func (m *Model) leaveDetail() {
	m.Mode = ViewOrgs
	m.DetailClient = ""
	m.Detail = nil
	m.DetailNotFound = false
	m.State.SetSelected(nil)
}

// refreshDetailView re-renders the loaded organization into the viewport.
func (m *Model) refreshDetailView() {
	m.DetailView.Width = max(20, m.Width)
	m.DetailView.Height = m.contentHeight()
	if m.Detail == nil {
		return
	}
	m.DetailView.SetContent(renderMarkdown(formatOrgAsMarkdown(m.Detail), m.DetailView.Width))
}

// renderDetail draws the detail view.
func (m Model) renderDetail() string {
	switch {
	case m.DetailNotFound:
		return mutedStyle.Render("Organization " + m.DetailClient + " was not found. It may have been deleted.\n\nesc back")
	case m.Detail == nil:
		return m.Spinner.View() + " Loading " + m.DetailClient + "…"
	}
	return m.DetailView.View()
}
