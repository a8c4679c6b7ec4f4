package console

import (
	"context"
	"errors"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/wizard"
)

// openForm installs fs as the open wizard.
func (m Model) openForm(fs *FormState) (tea.Model, tea.Cmd) {
	m.FormState = fs
	m.FormOpen = true

	// Set form width for text wrapping (subtract modal horizontal padding)
	modalWidth, _ := m.formModalDimensions()
	fs.SetWidth(modalWidth - 4)

	return m, fs.Form.Init()
}

func (m *Model) newFormState(title string, build func(opts ...form.Option) *form.Controller) *FormState {
	m.nextFormID++
	return NewFormState(m.nextFormID, title, build)
}

// openNewOrgForm opens the org-create wizard, or org-le when le is set.
func (m Model) openNewOrgForm(le bool) (tea.Model, tea.Cmd) {
	var fs *FormState
	if le {
		fs = m.newFormState("New large enterprise", func(opts ...form.Option) *form.Controller {
			return wizard.NewOrgLE(m.API, opts...)
		})
		fs.Action = "create-le"
	} else {
		fs = m.newFormState("New organization", func(opts ...form.Option) *form.Controller {
			return wizard.NewOrgCreate(m.API, opts...)
		})
		fs.Action = "create"
	}
	fs.Entity = "org"
	return m.openForm(fs)
}

// openEditOrgForm opens the org-update wizard for the detail view's or the
// selected organization.
func (m Model) openEditOrgForm() (tea.Model, tea.Cmd) {
	org := m.focusedOrg()
	if org == nil {
		return m, nil
	}
	fs := m.newFormState("Edit "+org.OrgName, func(opts ...form.Option) *form.Controller {
		return wizard.NewOrgUpdate(m.API, *org, opts...)
	})
	fs.Action = "update"
	fs.Entity = "org"
	fs.EntityID = org.ClientName
	return m.openForm(fs)
}

// openNewAssessmentForm opens the assessment-create wizard against the
// detail view's or the selected organization.
func (m Model) openNewAssessmentForm() (tea.Model, tea.Cmd) {
	org := m.focusedOrg()
	if org == nil {
		return m, nil
	}
	fs := m.newFormState("New assessment for "+org.OrgName, func(opts ...form.Option) *form.Controller {
		return wizard.NewAssessmentCreate(m.API, org.ClientName, opts...)
	})
	fs.Action = "create"
	fs.Entity = "assessment"
	return m.openForm(fs)
}

// closeForm closes the form modal and clears state. A submission still in
// flight keeps its form in inflight so its result is recorded on arrival.
func (m *Model) closeForm() {
	if fs := m.FormState; fs != nil && fs.Controller.Pending() {
		m.inflight[fs.ID] = fs
	}
	m.FormOpen = false
	m.FormState = nil
}

// submitForm validates the store and starts the request. A submission
// already in flight makes this a no-op.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	fs := m.FormState
	if fs == nil {
		return m, nil
	}
	fs.sync()

	sub, err := fs.Controller.Begin()
	if err != nil {
		if errors.Is(err, form.ErrSubmitPending) {
			return m, nil
		}
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			if i := fs.Controller.Catalog().SectionOf(ve.Field); i >= 0 && i != fs.Controller.Navigator().Index() {
				return m, fs.JumpSection(i)
			}
		}
		return m, nil
	}

	fs.closer.cancel()
	m.Logger.Debug("submitting form", "form", fs.Controller.Catalog().Name, "id", fs.ID,
		"values", fs.Controller.Store().Snapshot())
	return m, tea.Batch(fs.Spinner.Tick, runSubmission(fs.ID, sub, m.RequestTimeout))
}

// runSubmission performs the network call off the update loop.
func runSubmission(id int, sub *form.Submission, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return FormSubmittedMsg{FormID: id, Outcome: sub.Run(ctx)}
	}
}

// handleFormSubmitted applies a submission outcome to the wizard that sent
// it. The outcome of a wizard closed while pending is still recorded and
// reported in the status line.
func (m Model) handleFormSubmitted(msg FormSubmittedMsg) (tea.Model, tea.Cmd) {
	fs := m.FormState
	if fs == nil || fs.ID != msg.FormID {
		closed, ok := m.inflight[msg.FormID]
		if !ok {
			m.Logger.Debug("dropping result of unknown form", "id", msg.FormID)
			return m, nil
		}
		delete(m.inflight, msg.FormID)
		text, cmds := m.applySubmission(closed, msg.Outcome)
		cmds = append(cmds, m.setStatus(text, !msg.Outcome.OK()))
		return m, tea.Batch(cmds...)
	}

	_, cmds := m.applySubmission(fs, msg.Outcome)
	if msg.Outcome.OK() {
		fs.Reset()
		cmds = append(cmds, fs.closer.tick(fs.ID))
	}
	return m, tea.Batch(cmds...)
}

// applySubmission finishes fs's controller with o, records the attempt and,
// on success, invalidates what the mutation made stale. It returns the
// message shown to the user.
func (m Model) applySubmission(fs *FormState, o form.Outcome) (string, []tea.Cmd) {
	fs.Controller.Finish(o)
	entityID := fs.EntityID
	if o.OK() {
		switch p := o.Payload.(type) {
		case *models.Organization:
			entityID = p.ClientName
		case *models.Assessment:
			entityID = p.AssessmentID
		}
	}
	text := fs.Controller.Success()
	if !o.OK() {
		text = fs.Controller.Error()
	}
	cmds := []tea.Cmd{m.recordActivity(fs.Action, fs.Entity, entityID, o.OK(), text)}

	if !o.OK() {
		m.Logger.Warn("form submission failed", "form", fs.Controller.Catalog().Name, "err", o.Err)
		return text, cmds
	}

	switch fs.Entity {
	case "org":
		m.State.AfterOrgMutation()
	case "assessment":
		if a, ok := o.Payload.(*models.Assessment); ok {
			m.State.AddAssessment(*a)
		}
		m.State.Invalidate(appstate.TagAssessments)
	}
	return text, append(cmds, m.refreshStale()...)
}

// handleFormClose runs the controller's completion once its success delay
// has passed, closing the wizard. Closes for a wizard the user already
// closed or replaced, or one submitting again, are ignored.
func (m Model) handleFormClose(msg FormCloseMsg) (tea.Model, tea.Cmd) {
	fs := m.FormState
	if fs == nil || fs.ID != msg.FormID || fs.Controller.Pending() {
		return m, nil
	}
	if !fs.closer.fire(msg.Seq) {
		return m, nil
	}
	success := fs.Controller.Success()
	m.closeForm()
	if success != "" {
		return m, m.setStatus(success, false)
	}
	return m, nil
}

// handleFormKey routes a key press to the open wizard.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fs := m.FormState

	switch key := msg.String(); key {
	case "esc":
		m.closeForm()
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "ctrl+n":
		if fs.Controller.Pending() {
			return m, nil
		}
		return m, fs.NextSection()
	case "ctrl+p":
		if fs.Controller.Pending() {
			return m, nil
		}
		return m, fs.PrevSection()
	default:
		if len(key) == 5 && key[:4] == "alt+" {
			if n, err := strconv.Atoi(key[4:]); err == nil && n >= 1 {
				if fs.Controller.Pending() {
					return m, nil
				}
				return m, fs.JumpSection(n - 1)
			}
		}
	}

	if fs.Controller.Pending() {
		return m, nil
	}
	return m.updateForm(msg)
}

// updateForm forwards msg to the huh form. Completing the last section
// submits; completing any other advances to the next one.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	fs := m.FormState
	model, cmd := fs.Form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		fs.Form = f
	}

	switch fs.Form.State {
	case huh.StateCompleted:
		if fs.Controller.Navigator().IsLast() {
			fs.buildForm()
			fs.Form = fs.Form.WithWidth(fs.Width)
			next, submitCmd := m.submitForm()
			return next, tea.Batch(fs.Form.Init(), submitCmd)
		}
		return m, fs.NextSection()
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}
