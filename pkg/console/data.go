package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

const activityLimit = 100

// withTimeout runs fn under a fresh request context.
func withTimeout(timeout time.Duration, fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

// fetchScope loads GET /orgs and, for administrators, GET /orgs/all in
// parallel. The versions seen are recorded so pending invalidations issued
// after the fetch started trigger another one.
func (m Model) fetchScope() tea.Cmd {
	if m.API == nil {
		return nil
	}
	m.seen[appstate.TagOrgs] = m.State.Version(appstate.TagOrgs)
	m.seen[appstate.TagAllOrgs] = m.State.Version(appstate.TagAllOrgs)

	client, admin := m.API, m.Admin
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		var msg ScopeLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			scope, err := client.ListOrgs(gctx)
			msg.Scope = scope
			return err
		})
		if admin {
			g.Go(func() error {
				all, err := client.ListAllOrgs(gctx)
				msg.All = all
				return err
			})
		}
		msg.Err = g.Wait()
		return msg
	})
}

// fetchOrg loads one organization for the detail view.
func (m Model) fetchOrg(clientName string) tea.Cmd {
	m.seen[appstate.TagOrg] = m.State.Version(appstate.TagOrg)
	client := m.API
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		org, err := client.GetOrg(ctx, clientName)
		return OrgLoadedMsg{ClientName: clientName, Org: org, Err: err}
	})
}

// fetchActivity loads the local activity feed.
func (m Model) fetchActivity() tea.Cmd {
	if m.Activity == nil {
		return nil
	}
	log := m.Activity
	return func() tea.Msg {
		items, err := log.Recent(activityLimit)
		return ActivityMsg{Items: items, Err: err}
	}
}

// recordActivity writes one activity entry and reloads the feed.
func (m Model) recordActivity(action, entity, entityID string, ok bool, message string) tea.Cmd {
	if m.Activity == nil {
		return nil
	}
	log, logger := m.Activity, m.Logger
	return func() tea.Msg {
		e := &models.ActivityEntry{
			Action:   action,
			Entity:   entity,
			EntityID: entityID,
			OK:       ok,
			Message:  message,
		}
		if err := log.Record(e); err != nil {
			logger.Warn("record activity", "err", err)
		}
		items, err := log.Recent(activityLimit)
		return ActivityMsg{Items: items, Err: err}
	}
}

// refreshStale issues a fetch for every tag invalidated since it was last
// loaded.
func (m Model) refreshStale() []tea.Cmd {
	var cmds []tea.Cmd
	if m.State.Pending(appstate.TagOrgs, m.seen[appstate.TagOrgs]) ||
		(m.Admin && m.State.Pending(appstate.TagAllOrgs, m.seen[appstate.TagAllOrgs])) {
		cmds = append(cmds, m.fetchScope())
	}
	if m.DetailClient != "" && m.State.Pending(appstate.TagOrg, m.seen[appstate.TagOrg]) {
		cmds = append(cmds, m.fetchOrg(m.DetailClient))
	}
	return cmds
}

// waitForChange delivers the next invalidated tag as a StateChangedMsg.
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		tag, ok := <-ch
		if !ok {
			return nil
		}
		return StateChangedMsg{Tag: tag}
	}
}

// handleScopeLoaded stores the scope and rebuilds the list.
func (m Model) handleScopeLoaded(msg ScopeLoadedMsg) (tea.Model, tea.Cmd) {
	m.Loading = false
	if msg.Err != nil {
		m.Logger.Warn("load organizations", "err", msg.Err)
		return m, m.setStatus(form.ErrorMessage(msg.Err, "Failed to load organizations"), true)
	}
	m.State.SetScope(msg.Scope)
	if m.Admin {
		m.State.SetAllOrgs(msg.All)
	}
	m.rebuildList()
	return m, nil
}

// handleOrgLoaded shows the loaded organization, or the not-found
// placeholder.
func (m Model) handleOrgLoaded(msg OrgLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.ClientName != m.DetailClient {
		return m, nil
	}
	m.Loading = false
	if msg.Err != nil {
		if api.IsNotFound(msg.Err) {
			m.Detail = nil
			m.DetailNotFound = true
			m.State.SetSelected(nil)
			return m, nil
		}
		m.Logger.Warn("load organization", "client", msg.ClientName, "err", msg.Err)
		return m, m.setStatus(form.ErrorMessage(msg.Err, "Failed to load organization"), true)
	}
	m.Detail = msg.Org
	m.DetailNotFound = false
	m.State.SetSelected(msg.Org)
	m.refreshDetailView()
	return m, nil
}

// deleteOrg calls DELETE /orgs/:client_name.
func (m Model) deleteOrg(clientName string) tea.Cmd {
	client := m.API
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		return MutationMsg{
			Action:   "delete",
			Entity:   "org",
			EntityID: clientName,
			Success:  "Organization deleted",
			Fallback: "Failed to delete organization",
			Err:      client.DeleteOrg(ctx, clientName),
		}
	})
}

// switchOrg calls GET /orgs/switch/:client_name.
func (m Model) switchOrg(clientName string) tea.Cmd {
	client := m.API
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		_, err := client.SwitchOrg(ctx, clientName)
		return MutationMsg{
			Action:   "switch",
			Entity:   "org",
			EntityID: clientName,
			Success:  "Switched to " + clientName,
			Fallback: "Failed to switch organization",
			Err:      err,
		}
	})
}

// handleMutation reports a delete or switch and refreshes what it touched.
func (m Model) handleMutation(msg MutationMsg) (tea.Model, tea.Cmd) {
	text := msg.Success
	if msg.Err != nil {
		text = form.ErrorMessage(msg.Err, msg.Fallback)
		m.Logger.Warn("mutation failed", "action", msg.Action, "client", msg.EntityID, "err", msg.Err)
	}
	cmds := []tea.Cmd{
		m.recordActivity(msg.Action, msg.Entity, msg.EntityID, msg.Err == nil, text),
		m.setStatus(text, msg.Err != nil),
	}
	if msg.Err != nil {
		return m, tea.Batch(cmds...)
	}

	switch msg.Action {
	case "delete":
		if m.DetailClient == msg.EntityID {
			m.leaveDetail()
		}
	case "switch":
		m.activeOrg = msg.EntityID
		if m.onSwitch != nil {
			m.onSwitch(msg.EntityID)
		}
	}
	m.State.AfterOrgMutation()
	cmds = append(cmds, m.refreshStale()...)
	return m, tea.Batch(cmds...)
}

// createCheckout calls POST /payments/checkout-session.
func (m Model) createCheckout(plan, clientName string) tea.Cmd {
	client := m.API
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		sess, err := client.CreateCheckoutSession(ctx, models.CheckoutRequest{Plan: plan, ClientName: clientName})
		if err != nil {
			return CheckoutMsg{Err: err}
		}
		return CheckoutMsg{URL: sess.URL}
	})
}
