package console

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/models"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	mu sync.Mutex

	scope     *models.OrgScope
	orgs      map[string]*models.Organization
	createErr error
	created   []models.CreateOrgRequest
	leCreated []models.CreateLEOrgRequest
	updated   map[string]models.UpdateOrgRequest
	deleted   []string
	switched  []string
	assessed  []models.CreateAssessmentRequest
	profiles  []string
	statuses  []models.ThreatProfileStatus
	plans     []models.CheckoutRequest
}

func newFakeAPI() *fakeAPI {
	acme := models.Organization{ClientName: "acme", OrgName: "Acme", OrgDomain: "acme.io", Plan: "pro"}
	globex := models.Organization{ClientName: "globex", OrgName: "Globex", OrgDomain: "globex.com", Kind: models.OrgKindLE}
	provider := models.Organization{ClientName: "bastion-provider", OrgName: "Provider"}
	return &fakeAPI{
		scope: &models.OrgScope{Kind: models.ScopeManaged, Org: &provider, Clients: []models.Organization{acme, globex}},
		orgs: map[string]*models.Organization{
			"acme":   &acme,
			"globex": &globex,
		},
		updated: map[string]models.UpdateOrgRequest{},
	}
}

func (f *fakeAPI) CreateOrg(_ context.Context, req models.CreateOrgRequest) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Organization{ClientName: strings.ToLower(req.OrgName), OrgName: req.OrgName, OrgDomain: req.OrgDomain}, nil
}

func (f *fakeAPI) CreateLEOrg(_ context.Context, req models.CreateLEOrgRequest) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leCreated = append(f.leCreated, req)
	return &models.Organization{ClientName: strings.ToLower(req.OrgName), OrgName: req.OrgName, Kind: models.OrgKindLE}, nil
}

func (f *fakeAPI) UpdateOrg(_ context.Context, clientName string, req models.UpdateOrgRequest) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[clientName] = req
	org := *f.orgs[clientName]
	req.Apply(&org)
	return &org, nil
}

func (f *fakeAPI) CreateAssessment(_ context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assessed = append(f.assessed, req)
	return &models.Assessment{AssessmentID: req.AssessmentID, ClientName: req.ClientName, Creator: req.Creator}, nil
}

func (f *fakeAPI) ListOrgs(context.Context) (*models.OrgScope, error) {
	return f.scope, nil
}

func (f *fakeAPI) GetOrg(_ context.Context, clientName string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orgs[clientName]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, &api.APIError{Method: "GET", Path: "/orgs/" + clientName, Status: 404, Data: api.ErrorData{Message: "Organization not found"}}
}

func (f *fakeAPI) SwitchOrg(_ context.Context, clientName string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switched = append(f.switched, clientName)
	return f.orgs[clientName], nil
}

func (f *fakeAPI) ListAllOrgs(context.Context) ([]models.Organization, error) {
	return f.scope.Orgs(), nil
}

func (f *fakeAPI) DeleteOrg(_ context.Context, clientName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, clientName)
	return nil
}

func (f *fakeAPI) StartThreatProfile(_ context.Context, clientName string) (*models.ThreatProfileStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, clientName)
	return &models.ThreatProfileStatus{ClientName: clientName, Status: models.ProfileQueued}, nil
}

func (f *fakeAPI) ThreatProfileStatus(_ context.Context, clientName string) (*models.ThreatProfileStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return &models.ThreatProfileStatus{ClientName: clientName, Status: models.ProfileCompleted, Progress: 100}, nil
	}
	s := f.statuses[0]
	f.statuses = f.statuses[1:]
	return &s, nil
}

func (f *fakeAPI) ThreatProfileReport(_ context.Context, clientName string) (*models.ThreatProfileReport, error) {
	return &models.ThreatProfileReport{ClientName: clientName, Summary: "# Threat profile\n\nNo critical findings."}, nil
}

func (f *fakeAPI) CreateCheckoutSession(_ context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans = append(f.plans, req)
	return &models.CheckoutSession{URL: "https://checkout.example/c/1?plan=" + req.Plan}, nil
}

// memActivity is an in-memory ActivityLog.
type memActivity struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (a *memActivity) Record(e *models.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.Timestamp = time.Now()
	a.entries = append([]models.ActivityEntry{*e}, a.entries...)
	return nil
}

func (a *memActivity) Recent(limit int) ([]models.ActivityEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ActivityEntry(nil), a.entries[:min(limit, len(a.entries))]...), nil
}

func newTestModel(t *testing.T, f *fakeAPI) Model {
	t.Helper()
	m := New(Options{API: f, Activity: &memActivity{}, PollInterval: time.Millisecond})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = send(t, m, ScopeLoadedMsg{Scope: f.scope})
	return m
}

// send feeds msg to m and returns the updated model, discarding commands.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// sendCmd feeds msg to m and returns the updated model and command.
func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and every command batched inside it, returning the
// messages they produce. Commands that take longer than a short wait, such
// as toast timers, are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

// find returns the first message of type T in msgs.
func find[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestManagedScopeListsClients(t *testing.T) {
	m := newTestModel(t, newFakeAPI())

	if len(m.Orgs) != 2 {
		t.Fatalf("listed %d orgs, want 2 clients", len(m.Orgs))
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"managed: Provider", "acme", "globex", "[LE]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestFuzzyFilter(t *testing.T) {
	m := newTestModel(t, newFakeAPI())

	m = send(t, m, keyMsg("/"))
	if !m.Filtering {
		t.Fatal("expected filtering mode")
	}
	for _, r := range "glx" {
		m = send(t, m, keyMsg(string(r)))
	}
	if len(m.Filtered) != 1 || m.Orgs[m.Filtered[0]].ClientName != "globex" {
		t.Fatalf("filtered = %v, want [globex]", m.Filtered)
	}

	m = send(t, m, keyMsg("esc"))
	if m.Filtering || len(m.Filtered) != 2 {
		t.Errorf("esc should clear the filter, filtered = %v", m.Filtered)
	}
}

func TestDetailNotFoundPlaceholder(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m, cmd := sendCmd(t, m, keyMsg("enter"))
	if m.Mode != ViewDetail || m.DetailClient != "acme" {
		t.Fatalf("mode = %v client = %q", m.Mode, m.DetailClient)
	}

	delete(f.orgs, "acme")
	loaded, ok := find[OrgLoadedMsg](collect(cmd))
	if !ok {
		t.Fatal("expected OrgLoadedMsg")
	}
	m = send(t, m, loaded)
	if !m.DetailNotFound {
		t.Fatal("expected not-found placeholder")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "was not found") {
		t.Errorf("view:\n%s", view)
	}

	m = send(t, m, keyMsg("esc"))
	if m.Mode != ViewOrgs || m.DetailClient != "" {
		t.Errorf("esc should return to the list, mode = %v", m.Mode)
	}
}

func TestDetailRendersOrg(t *testing.T) {
	m := newTestModel(t, newFakeAPI())

	m, cmd := sendCmd(t, m, keyMsg("enter"))
	loaded, _ := find[OrgLoadedMsg](collect(cmd))
	m = send(t, m, loaded)

	if m.Detail == nil || m.Detail.ClientName != "acme" {
		t.Fatalf("detail = %+v", m.Detail)
	}
	if got := m.State.Selected(); got == nil || got.ClientName != "acme" {
		t.Errorf("selected = %+v", got)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "acme.io") {
		t.Errorf("detail view missing domain:\n%s", view)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = send(t, m, keyMsg("d"))
	if m.ModalKind != ModalDelete {
		t.Fatalf("modal = %v, want delete", m.ModalKind)
	}

	// Focus starts on Cancel.
	m = send(t, m, keyMsg("enter"))
	if m.Modal != nil || len(f.deleted) != 0 {
		t.Fatalf("cancel should close without deleting, deleted = %v", f.deleted)
	}

	m = send(t, m, keyMsg("d"))
	m = send(t, m, keyMsg("tab"))
	m, cmd := sendCmd(t, m, keyMsg("enter"))
	mut, ok := find[MutationMsg](collect(cmd))
	if !ok {
		t.Fatal("expected MutationMsg")
	}
	if len(f.deleted) != 1 || f.deleted[0] != "acme" {
		t.Fatalf("deleted = %v", f.deleted)
	}

	before := m.State.Version("orgs")
	m = send(t, m, mut)
	if m.StatusMessage != "Organization deleted" {
		t.Errorf("status = %q", m.StatusMessage)
	}
	if m.State.Version("orgs") == before {
		t.Error("delete should invalidate the org list")
	}
}

func TestSwitchCallsOnSwitch(t *testing.T) {
	f := newFakeAPI()
	var switched string
	m := New(Options{API: f, OnSwitch: func(c string) { switched = c }})
	m = send(t, m, ScopeLoadedMsg{Scope: f.scope})

	m = send(t, m, keyMsg("s"))
	if m.ModalKind != ModalSwitch {
		t.Fatalf("modal = %v", m.ModalKind)
	}
	m = send(t, m, keyMsg("down"))
	m = send(t, m, keyMsg("down"))
	m, cmd := sendCmd(t, m, keyMsg("enter"))
	mut, ok := find[MutationMsg](collect(cmd))
	if !ok {
		t.Fatal("expected MutationMsg")
	}
	m = send(t, m, mut)

	if switched != "globex" {
		t.Errorf("OnSwitch got %q, want globex", switched)
	}
	if m.activeOrg != "globex" {
		t.Errorf("active = %q", m.activeOrg)
	}
}

func TestSwitchPickerFilters(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = send(t, m, keyMsg("s"))
	for _, k := range []string{"g", "l", "x"} {
		m = send(t, m, keyMsg(k))
	}
	if m.ModalKind != ModalSwitch {
		t.Fatalf("typing should stay in the picker, modal = %v", m.ModalKind)
	}
	_, cmd := sendCmd(t, m, keyMsg("enter"))
	mut, ok := find[MutationMsg](collect(cmd))
	if !ok || mut.EntityID != "globex" {
		t.Fatalf("mutation = %+v", mut)
	}
}

func TestCheckoutFlow(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	var copied string
	clipboardWriter = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWriter = copyToClipboard })

	m = send(t, m, keyMsg("c"))
	m = send(t, m, keyMsg("down"))
	m, cmd := sendCmd(t, m, keyMsg("enter"))
	co, ok := find[CheckoutMsg](collect(cmd))
	if !ok {
		t.Fatal("expected CheckoutMsg")
	}
	if len(f.plans) != 1 || f.plans[0].Plan != "pro" || f.plans[0].ClientName != "acme" {
		t.Fatalf("plans = %+v", f.plans)
	}

	m = send(t, m, co)
	if m.ModalKind != ModalCheckout || m.State.CheckoutURL() != co.URL {
		t.Fatalf("modal = %v url = %q", m.ModalKind, m.State.CheckoutURL())
	}

	m, cmd = sendCmd(t, m, keyMsg("enter"))
	clip, ok := find[ClipboardMsg](collect(cmd))
	if !ok {
		t.Fatal("expected ClipboardMsg")
	}
	if copied != co.URL {
		t.Errorf("copied %q", copied)
	}
	m = send(t, m, clip)
	if m.StatusMessage != "Checkout link copied" {
		t.Errorf("status = %q", m.StatusMessage)
	}
}

func TestProfileFollowsRunToReport(t *testing.T) {
	f := newFakeAPI()
	f.statuses = []models.ThreatProfileStatus{{ClientName: "acme", Status: models.ProfileRunning, Progress: 50}}
	m := newTestModel(t, f)

	m, cmd := sendCmd(t, m, keyMsg("p"))
	if m.Mode != ViewProfile {
		t.Fatalf("mode = %v", m.Mode)
	}

	// queued -> tick -> running -> tick -> completed -> report
	for i := 0; i < 10 && m.Mode != ViewReport; i++ {
		msgs := collect(cmd)
		cmd = nil
		for _, msg := range msgs {
			switch msg.(type) {
			case ProfileStatusMsg, ProfileTickMsg, ReportMsg:
				m, cmd = sendCmd(t, m, msg)
			}
		}
	}

	if m.Mode != ViewReport {
		t.Fatalf("mode = %v, want report", m.Mode)
	}
	if !strings.Contains(m.ReportText, "No critical findings") {
		t.Errorf("report = %q", m.ReportText)
	}
}

func TestProfileDropsStaleGeneration(t *testing.T) {
	m := newTestModel(t, newFakeAPI())
	m = send(t, m, keyMsg("p"))
	gen := m.ProfileGen

	m = send(t, m, keyMsg("esc"))
	m = send(t, m, ProfileStatusMsg{Gen: gen, Status: &models.ThreatProfileStatus{Status: models.ProfileRunning, Progress: 10}})
	if m.Profile != nil {
		t.Errorf("status from an abandoned run was applied: %+v", m.Profile)
	}
}

func TestWelcomeModalCallsOnSeen(t *testing.T) {
	seen := false
	m := New(Options{API: newFakeAPI(), ShowWelcome: true, OnWelcomeSeen: func() { seen = true }})
	m = send(t, m, openWelcomeMsg{})
	if m.ModalKind != ModalWelcome {
		t.Fatalf("modal = %v", m.ModalKind)
	}
	m = send(t, m, keyMsg("enter"))
	if m.Modal != nil || !seen {
		t.Errorf("modal open = %v seen = %v", m.Modal != nil, seen)
	}
}

func TestFormatOrgAsMarkdown(t *testing.T) {
	md := formatOrgAsMarkdown(&models.Organization{
		ClientName:           "initech",
		OrgName:              "Initech",
		OrgDomain:            "initech.com",
		Kind:                 models.OrgKindLE,
		CountriesOfOperation: []string{"USA", "Canada"},
		EmployeeCount:        12000,
	})
	for _, want := range []string{"# Initech", "`initech`", "Large enterprise", "USA, Canada", "12,000"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Web presence") {
		t.Errorf("empty web section rendered:\n%s", md)
	}
}

func TestStateChangeRefetches(t *testing.T) {
	m := newTestModel(t, newFakeAPI())

	m.State.Invalidate(appstate.TagOrgs)
	changed, ok := find[StateChangedMsg](collect(m.waitForChange()))
	if !ok || changed.Tag != appstate.TagOrgs {
		t.Fatalf("changed = %+v, %v", changed, ok)
	}

	m, cmd := sendCmd(t, m, changed)
	if _, ok := find[ScopeLoadedMsg](collect(cmd)); !ok {
		t.Error("expected the org list to be refetched")
	}
	if m.State.Pending(appstate.TagOrgs, m.seen[appstate.TagOrgs]) {
		t.Error("refetch should mark the tag seen")
	}
}
