package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
)

// startProfile begins a threat-profiling run for clientName and follows it.
// Each run gets a new generation; results of older runs are dropped.
func (m Model) startProfile(clientName string) (tea.Model, tea.Cmd) {
	m.Mode = ViewProfile
	m.ProfileClient = clientName
	m.ProfileGen++
	m.Profile = nil
	m.ReportText = ""
	m.ReportView.SetContent("")

	gen, client := m.ProfileGen, m.API
	return m, withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		status, err := client.StartThreatProfile(ctx, clientName)
		return ProfileStatusMsg{Gen: gen, Status: status, Err: err}
	})
}

func (m Model) pollProfile(gen int) tea.Cmd {
	client, clientName := m.API, m.ProfileClient
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		status, err := client.ThreatProfileStatus(ctx, clientName)
		return ProfileStatusMsg{Gen: gen, Status: status, Err: err}
	})
}

func (m Model) fetchReport(gen int) tea.Cmd {
	client, clientName := m.API, m.ProfileClient
	return withTimeout(m.RequestTimeout, func(ctx context.Context) tea.Msg {
		report, err := client.ThreatProfileReport(ctx, clientName)
		return ReportMsg{Gen: gen, Report: report, Err: err}
	})
}

// handleProfileStatus records a poll and schedules the next one, or fetches
// the report once the run completes.
func (m Model) handleProfileStatus(msg ProfileStatusMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.ProfileGen || m.Mode != ViewProfile {
		return m, nil
	}
	if msg.Err != nil {
		m.Logger.Warn("threat profile status", "client", m.ProfileClient, "err", msg.Err)
		return m, tea.Batch(
			m.setStatus(form.ErrorMessage(msg.Err, "Failed to load threat profile"), true),
			m.recordActivity("profile", "org", m.ProfileClient, false, "Threat profiling failed"),
		)
	}
	m.Profile = msg.Status

	switch msg.Status.Status {
	case models.ProfileCompleted:
		m.State.Invalidate(appstate.TagProfile)
		return m, tea.Batch(
			m.fetchReport(msg.Gen),
			m.recordActivity("profile", "org", m.ProfileClient, true, "Threat profiling completed"),
		)
	case models.ProfileFailed:
		return m, m.recordActivity("profile", "org", m.ProfileClient, false, "Threat profiling failed")
	}

	gen := msg.Gen
	return m, tea.Tick(m.PollInterval, func(time.Time) tea.Msg { return ProfileTickMsg{Gen: gen} })
}

func (m Model) handleProfileTick(msg ProfileTickMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.ProfileGen || m.Mode != ViewProfile {
		return m, nil
	}
	return m, m.pollProfile(msg.Gen)
}

// handleReport shows the rendered report.
func (m Model) handleReport(msg ReportMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.ProfileGen {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.setStatus(form.ErrorMessage(msg.Err, "Failed to load report"), true)
	}
	m.Mode = ViewReport
	m.ReportText = msg.Report.Summary
	m.ReportView.Width = max(20, m.Width)
	m.ReportView.Height = m.contentHeight()
	m.ReportView.SetContent(renderMarkdown(msg.Report.Summary, m.ReportView.Width))
	m.ReportView.GotoTop()
	return m, nil
}

// renderProfile draws the progress of the current run.
func (m Model) renderProfile() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Threat profiling · " + m.ProfileClient))
	b.WriteString("\n\n")
	if m.Profile == nil {
		b.WriteString(m.Spinner.View() + " Starting…")
		return b.String()
	}
	fmt.Fprintf(&b, "%s  %s\n", output.ProgressBar(m.Profile.Progress, 30), output.FormatProfileState(m.Profile.Status))
	if m.Profile.Message != "" {
		b.WriteString("\n" + mutedStyle.Render(m.Profile.Message) + "\n")
	}
	if !m.Profile.Done() {
		b.WriteString("\n" + m.Spinner.View() + " polling every " + m.PollInterval.String())
	}
	return b.String()
}
