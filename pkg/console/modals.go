package console

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/bastion/pkg/console/modal"
)

var checkoutPlans = []modal.ListItem{
	{ID: "starter", Label: "Starter", Detail: "one organization"},
	{ID: "pro", Label: "Pro", Detail: "assessments and threat profiling"},
	{ID: "enterprise", Label: "Enterprise", Detail: "managed clients and LE organizations"},
}

func (m *Model) openModal(kind ModalKind, md *modal.Modal, target string) {
	m.ModalKind = kind
	m.Modal = md
	m.ModalTarget = target
}

func (m *Model) closeModal() {
	m.ModalKind = ModalNone
	m.Modal = nil
	m.ModalTarget = ""
}

func (m *Model) openDeleteModal() {
	org := m.focusedOrg()
	if org == nil {
		return
	}
	md := modal.New("Delete organization", modal.WithVariant(modal.VariantDanger)).
		AddSection(modal.Text("Delete " + org.OrgName + " (" + org.ClientName + ")? This cannot be undone.")).
		AddSection(modal.Spacer()).
		AddSection(modal.Buttons(
			modal.Btn(" Delete ", "delete", modal.BtnDanger()),
			modal.Btn(" Cancel ", modal.ActionCancel),
		))
	md.SetFocus(modal.ActionCancel)
	m.openModal(ModalDelete, md, org.ClientName)
}

func (m *Model) openSwitchModal() {
	scope := m.State.Scope()
	if scope == nil {
		return
	}
	var items []modal.ListItem
	selected := new(int)
	for _, o := range scope.Orgs() {
		current := o.ClientName == m.activeOrg
		if current {
			*selected = len(items)
		}
		items = append(items, modal.ListItem{
			ID:      o.ClientName,
			Label:   o.OrgName,
			Detail:  o.ClientName + " · " + o.OrgDomain,
			Current: current,
		})
	}
	md := modal.New("Switch organization", modal.WithWidth(60)).
		AddSection(modal.List("orgs", items, selected, modal.WithMaxVisible(8), modal.WithFilter()))
	m.openModal(ModalSwitch, md, "")
}

func (m *Model) openPlanModal() {
	org := m.focusedOrg()
	if org == nil {
		return
	}
	md := modal.New("Upgrade "+org.OrgName, modal.WithVariant(modal.VariantInfo)).
		AddSection(modal.Text("Choose a plan. A hosted checkout link will be created.")).
		AddSection(modal.Spacer()).
		AddSection(modal.List("plans", checkoutPlans, new(int)))
	m.openModal(ModalPlan, md, org.ClientName)
}

func (m *Model) openCheckoutModal(url string) {
	md := modal.New("Checkout ready", modal.WithVariant(modal.VariantInfo), modal.WithWidth(70)).
		AddSection(modal.Text("Open this link to complete the purchase:")).
		AddSection(modal.Spacer()).
		AddSection(modal.Text(url)).
		AddSection(modal.Spacer()).
		AddSection(modal.Buttons(
			modal.Btn(" Copy link ", "copy"),
			modal.Btn(" Close ", "close"),
		))
	m.openModal(ModalCheckout, md, url)
}

func (m *Model) openHelpModal() {
	md := modal.New("Keyboard shortcuts", modal.WithWidth(60), modal.WithPrimaryAction("close")).
		AddSection(modal.KeyValue(helpRows()...))
	m.openModal(ModalHelp, md, "")
}

func helpRows() [][2]string {
	return [][2]string{
		{"↑/↓ j/k", "move"},
		{"enter", "open organization"},
		{"/", "filter"},
		{"n", "new organization"},
		{"L", "new large enterprise"},
		{"e", "edit organization"},
		{"a", "new assessment"},
		{"d", "delete organization"},
		{"s", "switch organization"},
		{"p", "run threat profiling"},
		{"c", "upgrade plan"},
		{"y", "copy organization as markdown"},
		{"g", "toggle all organizations (admin)"},
		{"A", "activity log"},
		{"r", "refresh"},
		{"esc", "back"},
		{"q", "quit"},
	}
}

// handleModalKey routes a key to the open modal and acts on the result.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.Modal.HandleKey(msg)
	if action == "" {
		return m, cmd
	}

	kind, target := m.ModalKind, m.ModalTarget
	if action == modal.ActionCancel || action == "close" {
		m.closeModal()
		if kind == ModalWelcome && m.onWelcomeSeen != nil {
			m.onWelcomeSeen()
		}
		return m, cmd
	}

	switch kind {
	case ModalDelete:
		m.closeModal()
		return m, m.deleteOrg(target)
	case ModalSwitch:
		m.closeModal()
		return m, m.switchOrg(action)
	case ModalPlan:
		m.closeModal()
		return m, tea.Batch(m.createCheckout(action, target), m.setStatus("Creating checkout session…", false))
	case ModalCheckout:
		if action == "copy" {
			return m, copyCmd("Checkout link", target)
		}
	}
	return m, cmd
}

// renderOverlay centers the open wizard or modal over the screen.
func (m Model) renderOverlay() string {
	if m.FormOpen && m.FormState != nil {
		if m.Width <= 0 || m.Height <= 0 {
			return m.renderFormModal()
		}
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.renderFormModal())
	}
	if m.Modal != nil {
		return m.Modal.Render(m.Width, m.Height)
	}
	return ""
}
