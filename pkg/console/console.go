// Package console is the interactive terminal UI: organization list and
// detail, wizard forms, threat profiling and the local activity feed.
package console

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/wizard"
	"github.com/marcus/bastion/pkg/console/modal"
)

// API is the part of the platform client the console uses.
type API interface {
	wizard.OrgService
	wizard.AssessmentService
	ListOrgs(ctx context.Context) (*models.OrgScope, error)
	GetOrg(ctx context.Context, clientName string) (*models.Organization, error)
	SwitchOrg(ctx context.Context, clientName string) (*models.Organization, error)
	ListAllOrgs(ctx context.Context) ([]models.Organization, error)
	DeleteOrg(ctx context.Context, clientName string) error
	StartThreatProfile(ctx context.Context, clientName string) (*models.ThreatProfileStatus, error)
	ThreatProfileStatus(ctx context.Context, clientName string) (*models.ThreatProfileStatus, error)
	ThreatProfileReport(ctx context.Context, clientName string) (*models.ThreatProfileReport, error)
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
}

// ActivityLog records and lists local activity. Optional.
type ActivityLog interface {
	Record(e *models.ActivityEntry) error
	Recent(limit int) ([]models.ActivityEntry, error)
}

// ViewMode is the main screen being shown.
type ViewMode int

const (
	ViewOrgs ViewMode = iota
	ViewDetail
	ViewProfile
	ViewReport
	ViewActivity
)

// ModalKind identifies the open modal dialog.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalWelcome
	ModalHelp
	ModalDelete
	ModalSwitch
	ModalPlan
	ModalCheckout
)

// Options configures the console.
type Options struct {
	API      API
	Activity ActivityLog
	State    *appstate.State
	Logger   *slog.Logger

	// PollInterval is the threat-profile status poll interval (default: 3s).
	PollInterval time.Duration
	// RequestTimeout bounds each API call (default: 30s).
	RequestTimeout time.Duration
	// Admin enables the all-organizations listing.
	Admin bool
	// ActiveOrg is the locally remembered organization, preselected in the list.
	ActiveOrg string

	// ShowWelcome opens the welcome modal on start; OnWelcomeSeen runs when it closes.
	ShowWelcome   bool
	OnWelcomeSeen func()
	// OnSwitch runs after the server confirms an organization switch.
	OnSwitch func(clientName string)
}

// Model is the bubbletea model of the console.
type Model struct {
	API      API
	Activity ActivityLog
	State    *appstate.State
	Logger   *slog.Logger

	PollInterval   time.Duration
	RequestTimeout time.Duration
	Admin          bool

	Width  int
	Height int
	Mode   ViewMode

	// Organization list
	Orgs      []models.Organization
	Cursor    int
	ShowAll   bool
	Filter    textinput.Model
	Filtering bool
	Filtered  []int
	activeOrg string
	Loading   bool

	// Detail
	DetailClient   string
	Detail         *models.Organization
	DetailNotFound bool
	DetailView     viewport.Model

	// Threat profiling
	ProfileClient string
	ProfileGen    int
	Profile       *models.ThreatProfileStatus
	ReportText    string
	ReportView    viewport.Model

	// Activity feed
	ActivityItems []models.ActivityEntry

	// Wizard form
	FormOpen   bool
	FormState  *FormState
	nextFormID int
	// inflight holds wizards closed while their submission was pending.
	inflight map[int]*FormState

	// Modal dialogs
	Modal       *modal.Modal
	ModalKind   ModalKind
	ModalTarget string

	StatusMessage string
	StatusIsError bool
	Spinner       spinner.Model

	showWelcome   bool
	onWelcomeSeen func()
	onSwitch      func(string)
	seen          map[appstate.Tag]uint64
	changes       <-chan appstate.Tag
}

// New creates the console model.
func New(opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.State == nil {
		opts.State = appstate.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter organizations"
	filter.CharLimit = 64

	return Model{
		API:            opts.API,
		Activity:       opts.Activity,
		State:          opts.State,
		Logger:         opts.Logger,
		PollInterval:   opts.PollInterval,
		RequestTimeout: opts.RequestTimeout,
		Admin:          opts.Admin,
		Filter:         filter,
		activeOrg:      opts.ActiveOrg,
		Loading:        true,
		DetailView:     viewport.New(0, 0),
		ReportView:     viewport.New(0, 0),
		Spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		showWelcome:    opts.ShowWelcome,
		onWelcomeSeen:  opts.OnWelcomeSeen,
		onSwitch:       opts.OnSwitch,
		seen:           make(map[appstate.Tag]uint64),
		changes:        opts.State.Subscribe(),
		inflight:       make(map[int]*FormState),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchScope(), m.fetchActivity(), m.Spinner.Tick, m.waitForChange()}
	if m.showWelcome {
		cmds = append(cmds, func() tea.Msg { return openWelcomeMsg{} })
	}
	return tea.Batch(cmds...)
}

// Run starts the console on the terminal and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer m.State.Unsubscribe(m.changes)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages

// ScopeLoadedMsg carries GET /orgs (and, for administrators, GET /orgs/all).
type ScopeLoadedMsg struct {
	Scope *models.OrgScope
	All   []models.Organization
	Err   error
}

// OrgLoadedMsg carries one organization for the detail view.
type OrgLoadedMsg struct {
	ClientName string
	Org        *models.Organization
	Err        error
}

// FormSubmittedMsg carries the outcome of a wizard submission.
type FormSubmittedMsg struct {
	FormID  int
	Outcome form.Outcome
}

// FormCloseMsg closes the wizard once the success message has been shown.
// Seq identifies which successful submission scheduled it.
type FormCloseMsg struct {
	FormID int
	Seq    int
}

// StateChangedMsg reports an invalidated tag of the shared state.
type StateChangedMsg struct {
	Tag appstate.Tag
}

// MutationMsg reports a delete or switch.
type MutationMsg struct {
	Action   string
	Entity   string
	EntityID string
	Success  string
	Fallback string
	Err      error
}

// CheckoutMsg carries a hosted checkout URL.
type CheckoutMsg struct {
	URL string
	Err error
}

// ProfileStatusMsg carries one threat-profile status poll.
type ProfileStatusMsg struct {
	Gen    int
	Status *models.ThreatProfileStatus
	Err    error
}

// ProfileTickMsg triggers the next status poll.
type ProfileTickMsg struct {
	Gen int
}

// ReportMsg carries a threat-profile report.
type ReportMsg struct {
	Gen    int
	Report *models.ThreatProfileReport
	Err    error
}

// ActivityMsg carries the activity feed.
type ActivityMsg struct {
	Items []models.ActivityEntry
	Err   error
}

// ClipboardMsg reports a clipboard copy.
type ClipboardMsg struct {
	What string
	Err  error
}

// ClearStatusMsg clears the toast line.
type ClearStatusMsg struct{}

type openWelcomeMsg struct{}
