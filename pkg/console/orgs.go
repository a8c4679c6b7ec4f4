package console

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
)

// orgSource adapts organizations to fuzzy.Source, matching on client name,
// display name and domain.
type orgSource []models.Organization

func (s orgSource) String(i int) string {
	return s[i].ClientName + " " + s[i].OrgName + " " + s[i].OrgDomain
}

func (s orgSource) Len() int { return len(s) }

// listedOrgs returns the organizations the list shows: every organization
// for the admin view, the clients of a managed scope, or the single org.
func (m Model) listedOrgs() []models.Organization {
	if m.ShowAll {
		return m.State.AllOrgs()
	}
	scope := m.State.Scope()
	if scope == nil {
		return nil
	}
	if scope.Kind == models.ScopeManaged {
		return append([]models.Organization(nil), scope.Clients...)
	}
	return scope.Orgs()
}

// rebuildList reloads Orgs from the state and reapplies the filter, keeping
// the cursor on the same organization when it is still listed.
func (m *Model) rebuildList() {
	current := ""
	if o := m.selectedOrg(); o != nil {
		current = o.ClientName
	} else if m.activeOrg != "" {
		current = m.activeOrg
	}

	m.Orgs = m.listedOrgs()
	m.applyFilter()

	m.Cursor = 0
	for i, idx := range m.Filtered {
		if m.Orgs[idx].ClientName == current {
			m.Cursor = i
			break
		}
	}
}

// applyFilter recomputes Filtered from the filter text. Matches are ordered
// by fuzzy score; an empty filter lists everything in order.
func (m *Model) applyFilter() {
	pattern := strings.TrimSpace(m.Filter.Value())
	m.Filtered = m.Filtered[:0]
	if pattern == "" {
		for i := range m.Orgs {
			m.Filtered = append(m.Filtered, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(pattern, orgSource(m.Orgs)) {
			m.Filtered = append(m.Filtered, match.Index)
		}
	}
	m.Cursor = clampInt(m.Cursor, 0, max(0, len(m.Filtered)-1))
}

// selectedOrg returns the organization under the cursor.
func (m Model) selectedOrg() *models.Organization {
	if m.Cursor < 0 || m.Cursor >= len(m.Filtered) {
		return nil
	}
	o := m.Orgs[m.Filtered[m.Cursor]]
	return &o
}

// focusedOrg returns the organization actions apply to: the one in the
// detail view, else the one under the cursor.
func (m Model) focusedOrg() *models.Organization {
	if m.Mode == ViewDetail {
		return m.Detail
	}
	return m.selectedOrg()
}

// handleFilterKey edits the filter text while filtering.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Filtering = false
		m.Filter.Blur()
		m.Filter.SetValue("")
		m.applyFilter()
		return m, nil
	case "enter":
		m.Filtering = false
		m.Filter.Blur()
		return m, nil
	case "up":
		m.moveCursor(-1)
		return m, nil
	case "down":
		m.moveCursor(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.Filter, cmd = m.Filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	m.Cursor = clampInt(m.Cursor+delta, 0, max(0, len(m.Filtered)-1))
}

// renderOrgList draws the organization table.
func (m Model) renderOrgList(height int) string {
	var b strings.Builder

	if m.Filtering || m.Filter.Value() != "" {
		b.WriteString(m.Filter.View())
		b.WriteString("\n")
		height--
	}

	if m.Loading && len(m.Orgs) == 0 {
		b.WriteString(m.Spinner.View() + " Loading organizations…")
		return b.String()
	}
	if len(m.Filtered) == 0 {
		if len(m.Orgs) == 0 {
			b.WriteString(mutedStyle.Render("No organizations yet. Press n to create one."))
		} else {
			b.WriteString(mutedStyle.Render("No organizations match the filter."))
		}
		return b.String()
	}

	width := max(40, m.Width)
	nameW := max(12, (width-40)/2)
	domainW := max(10, width-nameW-34)

	header := fmt.Sprintf("  %-18s %-*s %-*s %s", "CLIENT", nameW, "NAME", domainW, "DOMAIN", "PLAN")
	b.WriteString(mutedStyle.Render(header))
	b.WriteString("\n")
	height--

	start := 0
	if height > 0 && m.Cursor >= height {
		start = m.Cursor - height + 1
	}
	for i := start; i < len(m.Filtered) && (height <= 0 || i-start < height); i++ {
		o := m.Orgs[m.Filtered[i]]
		mark := "  "
		if o.ClientName == m.activeOrg {
			mark = activeMarkStyle.Render("● ")
		}
		name := o.OrgName
		if o.Kind == models.OrgKindLE {
			name += " " + output.FormatKind(o.Kind)
		}
		line := fmt.Sprintf("%-18s %s %s %s",
			ansi.Truncate(o.ClientName, 18, "…"),
			pad(name, nameW),
			pad(o.OrgDomain, domainW),
			planStyle.Render(o.Plan))
		if i == m.Cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(mark + line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// pad truncates or right-pads s to w display cells.
func pad(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
