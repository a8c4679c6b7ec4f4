package console

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/output"
)

const statusTTL = 2 * time.Second

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.refreshDetailView()
		m.ReportView.Width = max(20, m.Width)
		m.ReportView.Height = m.contentHeight()
		if m.FormState != nil {
			w, _ := m.formModalDimensions()
			m.FormState.SetWidth(w - 4)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.FormState != nil && m.FormState.Controller.Pending() {
			m.FormState.Spinner, cmd = m.FormState.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case openWelcomeMsg:
		m.openModal(ModalWelcome, m.createGettingStartedModal(), "")
		return m, nil

	case ScopeLoadedMsg:
		return m.handleScopeLoaded(msg)
	case OrgLoadedMsg:
		return m.handleOrgLoaded(msg)
	case FormSubmittedMsg:
		return m.handleFormSubmitted(msg)
	case FormCloseMsg:
		return m.handleFormClose(msg)
	case StateChangedMsg:
		m.Logger.Debug("state changed", "tag", msg.Tag)
		return m, tea.Batch(append(m.refreshStale(), m.waitForChange())...)
	case MutationMsg:
		return m.handleMutation(msg)
	case ProfileStatusMsg:
		return m.handleProfileStatus(msg)
	case ProfileTickMsg:
		return m.handleProfileTick(msg)
	case ReportMsg:
		return m.handleReport(msg)

	case CheckoutMsg:
		if msg.Err != nil {
			return m, m.setStatus(form.ErrorMessage(msg.Err, "Failed to create checkout session"), true)
		}
		m.State.SetCheckoutURL(msg.URL)
		m.StatusMessage = ""
		m.openCheckoutModal(msg.URL)
		return m, nil

	case ActivityMsg:
		if msg.Err != nil {
			m.Logger.Warn("load activity", "err", msg.Err)
			return m, nil
		}
		m.ActivityItems = msg.Items
		return m, nil

	case ClipboardMsg:
		if msg.Err != nil {
			return m, m.setStatus("Copy failed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus(msg.What+" copied", false)

	case ClearStatusMsg:
		m.StatusMessage = ""
		m.StatusIsError = false
		return m, nil
	}

	// Cursor blink and other internal messages for the open wizard.
	if m.FormOpen && m.FormState != nil && !m.FormState.Controller.Pending() {
		return m.updateForm(msg)
	}
	return m, nil
}

// setStatus shows a toast that clears itself.
func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.StatusMessage = text
	m.StatusIsError = isError
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}

// handleKey routes a key press to the wizard, the modal, the filter or the
// current view, in that order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.FormOpen && m.FormState != nil {
		return m.handleFormKey(msg)
	}
	if m.Modal != nil {
		return m.handleModalKey(msg)
	}
	if m.Filtering {
		return m.handleFilterKey(msg)
	}

	switch m.Mode {
	case ViewDetail:
		if next, cmd, ok := m.handleDetailKey(msg); ok {
			return next, cmd
		}
	case ViewProfile, ViewReport, ViewActivity:
		if next, cmd, ok := m.handleSubviewKey(msg); ok {
			return next, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.openHelpModal()
		return m, nil
	case "esc":
		if m.Filter.Value() != "" {
			m.Filter.SetValue("")
			m.applyFilter()
		}
		return m, nil
	case "r":
		m.Loading = true
		return m, tea.Batch(m.fetchScope(), m.fetchActivity())
	case "n":
		return m.openNewOrgForm(false)
	case "L":
		return m.openNewOrgForm(true)
	case "A":
		m.Mode = ViewActivity
		return m, m.fetchActivity()
	case "s":
		m.openSwitchModal()
		return m, nil
	}

	if m.Mode != ViewOrgs {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home":
		m.Cursor = 0
	case "end":
		m.Cursor = max(0, len(m.Filtered)-1)
	case "/":
		m.Filtering = true
		return m, m.Filter.Focus()
	case "g":
		if m.Admin {
			m.ShowAll = !m.ShowAll
			m.rebuildList()
		}
	case "enter":
		if o := m.selectedOrg(); o != nil {
			return m.openDetail(o.ClientName)
		}
	default:
		return m.handleOrgAction(msg)
	}
	return m, nil
}

// handleOrgAction handles the keys that act on the focused organization in
// both the list and the detail view.
func (m Model) handleOrgAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	org := m.focusedOrg()
	if org == nil {
		return m, nil
	}
	switch msg.String() {
	case "e":
		return m.openEditOrgForm()
	case "a":
		return m.openNewAssessmentForm()
	case "d":
		m.openDeleteModal()
	case "c":
		m.openPlanModal()
	case "p":
		return m.startProfile(org.ClientName)
	case "y":
		return m, copyCmd("Organization", formatOrgAsMarkdown(org))
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "backspace":
		m.leaveDetail()
		return m, nil, true
	case "e", "a", "d", "c", "p", "y":
		if m.Detail == nil {
			return m, nil, true
		}
		next, cmd := m.handleOrgAction(msg)
		return next, cmd, true
	case "up", "down", "k", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.DetailView, cmd = m.DetailView.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m Model) handleSubviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "backspace":
		if m.Mode == ViewProfile || m.Mode == ViewReport {
			// Stop following the run.
			m.ProfileGen++
		}
		m.Mode = ViewOrgs
		return m, nil, true
	case "up", "down", "k", "j", "pgup", "pgdown":
		if m.Mode == ViewReport {
			var cmd tea.Cmd
			m.ReportView, cmd = m.ReportView.Update(msg)
			return m, cmd, true
		}
	case "y":
		if m.Mode == ViewReport {
			return m, copyCmd("Report", m.ReportText), true
		}
	}
	return m, nil, false
}

// headerLine describes the current scope.
func (m Model) headerLine() string {
	title := "bastion"
	if scope := m.State.Scope(); scope != nil && scope.Org != nil {
		title += " · " + scope.Kind.String() + ": " + scope.Org.OrgName
		if scope.Org.Plan != "" {
			title += " [" + scope.Org.Plan + "]"
		}
	}
	if m.ShowAll {
		title += " · all organizations"
	}
	switch m.Mode {
	case ViewDetail:
		title += " › " + m.DetailClient
	case ViewProfile, ViewReport:
		title += " › threat profile " + m.ProfileClient
	case ViewActivity:
		title += " › activity"
	}
	return title
}

func (m Model) footerHints() string {
	switch m.Mode {
	case ViewDetail:
		return "e edit · a assessment · p profile · c upgrade · y copy · d delete · esc back"
	case ViewProfile:
		return "esc back"
	case ViewReport:
		return "↑/↓ scroll · y copy · esc back"
	case ViewActivity:
		return "esc back"
	}
	return "enter open · / filter · n new · L new LE · s switch · A activity · ? help · q quit"
}

// View implements tea.Model.
func (m Model) View() string {
	if overlay := m.renderOverlay(); overlay != "" {
		return overlay
	}

	var body string
	switch m.Mode {
	case ViewDetail:
		body = m.renderDetail()
	case ViewProfile:
		body = m.renderProfile()
	case ViewReport:
		body = m.ReportView.View()
	case ViewActivity:
		body = m.renderActivity(m.contentHeight())
	default:
		body = m.renderOrgList(m.contentHeight())
	}

	header := headerStyle.Width(max(0, m.Width)).Render(m.headerLine())
	footer := helpStyle.Render(m.footerHints())
	status := ""
	if m.StatusMessage != "" {
		if m.StatusIsError {
			status = toastErrorStyle.Render("✗ " + m.StatusMessage)
		} else {
			status = toastStyle.Render(m.StatusMessage)
		}
	}
	if m.Mode == ViewOrgs && !m.Loading && len(m.Orgs) > 0 {
		footer = output.Muted(strconv.Itoa(len(m.Filtered))+"/"+strconv.Itoa(len(m.Orgs))) + "  " + footer
	}
	return header + "\n" + body + "\n\n" + status + "\n" + footer
}
