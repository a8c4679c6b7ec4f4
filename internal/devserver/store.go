package devserver

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/workflow"
)

// ProviderClientName is the client name of the managing organization.
const ProviderClientName = "bastion-provider"

var (
	errDomainInUse      = errors.New("Domain in use")
	errOrgExists        = errors.New("Organization already exists")
	errOrgNotFound      = errors.New("Organization not found")
	errAssessmentExists = errors.New("Assessment ID already exists")
	errNoProfile        = errors.New("No threat profile for organization")
	errReportNotReady   = errors.New("Report not ready")
	errProfileRunning   = errors.New("Threat profile already running")
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a client name from an organization name.
func Slug(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

type profileRun struct {
	status models.ThreatProfileStatus
}

// Store holds all server state in memory.
type Store struct {
	mu          sync.Mutex
	provider    models.Organization
	orgs        map[string]*models.Organization
	active      string
	assessments []models.Assessment
	profiles    map[string]*profileRun
	step        int
	now         func() time.Time
}

// NewStore creates an empty store. step is the progress added per status poll.
func NewStore(step int) *Store {
	now := time.Now().UTC()
	return &Store{
		provider: models.Organization{
			ClientName: ProviderClientName,
			OrgName:    "Bastion Provider",
			OrgDomain:  "provider.bastion.dev",
			Kind:       models.OrgKindStandard,
			Plan:       "enterprise",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		orgs:     make(map[string]*models.Organization),
		profiles: make(map[string]*profileRun),
		step:     step,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed adds sample organizations.
func (s *Store) Seed() {
	_, _ = s.CreateOrg(models.CreateOrgRequest{
		OrgName:              "Acme",
		OrgDomain:            "acme.io",
		Sector:               "Technology",
		CountriesOfOperation: []string{"USA", "Canada"},
	}, models.OrgKindStandard, 0, 0, nil)
	_, _ = s.CreateOrg(models.CreateOrgRequest{
		OrgName:   "Globex",
		OrgDomain: "globex.com",
		Sector:    "Finance",
	}, models.OrgKindStandard, 0, 0, nil)
}

// CreateOrg adds an organization. Domains are unique, case-insensitively.
func (s *Store) CreateOrg(req models.CreateOrgRequest, kind models.OrgKind, employees int, revenue float64, subsidiaries []string) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := Slug(req.OrgName)
	if name == "" {
		return models.Organization{}, fmt.Errorf("invalid organization name %q", req.OrgName)
	}
	if _, ok := s.orgs[name]; ok || name == ProviderClientName {
		return models.Organization{}, errOrgExists
	}
	for _, o := range s.orgs {
		if strings.EqualFold(o.OrgDomain, req.OrgDomain) {
			return models.Organization{}, errDomainInUse
		}
	}

	now := s.now()
	org := &models.Organization{
		ClientName:           name,
		OrgName:              req.OrgName,
		OrgDomain:            req.OrgDomain,
		Kind:                 kind,
		Sector:               req.Sector,
		WebsiteURL:           req.WebsiteURL,
		CountriesOfOperation: slices.Clone(req.CountriesOfOperation),
		HomeURL:              req.HomeURL,
		AboutUsURL:           req.AboutUsURL,
		AdditionalDetails:    req.AdditionalDetails,
		EmployeeCount:        employees,
		AnnualRevenue:        revenue,
		Subsidiaries:         slices.Clone(subsidiaries),
		Plan:                 "free",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	s.orgs[name] = org
	if s.active == "" {
		s.active = name
	}
	return *org, nil
}

// GetOrg returns an organization by client name.
func (s *Store) GetOrg(clientName string) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clientName == ProviderClientName {
		return s.provider, nil
	}
	org, ok := s.orgs[clientName]
	if !ok {
		return models.Organization{}, errOrgNotFound
	}
	return *org, nil
}

// UpdateOrg applies a partial update.
func (s *Store) UpdateOrg(clientName string, req models.UpdateOrgRequest) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[clientName]
	if !ok {
		return models.Organization{}, errOrgNotFound
	}
	req.Apply(org)
	org.UpdatedAt = s.now()
	return *org, nil
}

// DeleteOrg removes an organization and its assessments.
func (s *Store) DeleteOrg(clientName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[clientName]; !ok {
		return errOrgNotFound
	}
	delete(s.orgs, clientName)
	delete(s.profiles, clientName)
	s.assessments = slices.DeleteFunc(s.assessments, func(a models.Assessment) bool {
		return a.ClientName == clientName
	})
	if s.active == clientName {
		s.active = ""
		if names := s.sortedNamesLocked(); len(names) > 0 {
			s.active = names[0]
		}
	}
	return nil
}

// Switch makes clientName the active organization.
func (s *Store) Switch(clientName string) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[clientName]
	if !ok {
		return models.Organization{}, errOrgNotFound
	}
	s.active = clientName
	return *org, nil
}

func (s *Store) sortedNamesLocked() []string {
	names := make([]string, 0, len(s.orgs))
	for n := range s.orgs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Orgs returns all client organizations ordered by client name.
func (s *Store) Orgs() []models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Organization, 0, len(s.orgs))
	for _, n := range s.sortedNamesLocked() {
		out = append(out, *s.orgs[n])
	}
	return out
}

// Scope builds the GET /orgs answer.
func (s *Store) Scope(managed bool) (models.OrgScope, error) {
	if managed {
		s.mu.Lock()
		provider := s.provider
		s.mu.Unlock()
		return models.OrgScope{Kind: models.ScopeManaged, Org: &provider, Clients: s.Orgs()}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[s.active]
	if !ok {
		return models.OrgScope{}, errOrgNotFound
	}
	cp := *org
	return models.OrgScope{Kind: models.ScopeSingle, Org: &cp}, nil
}

// All returns the provider followed by every client organization.
func (s *Store) All() []models.Organization {
	s.mu.Lock()
	provider := s.provider
	s.mu.Unlock()
	return append([]models.Organization{provider}, s.Orgs()...)
}

// CreateAssessment records an assessment. IDs are unique.
func (s *Store) CreateAssessment(req models.CreateAssessmentRequest) (models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assessments {
		if a.AssessmentID == req.AssessmentID {
			return models.Assessment{}, errAssessmentExists
		}
	}
	clientName := req.ClientName
	if clientName == "" {
		clientName = s.active
	}
	if _, ok := s.orgs[clientName]; clientName != "" && !ok {
		return models.Assessment{}, errOrgNotFound
	}
	a := models.Assessment{
		AssessmentID:    req.AssessmentID,
		ClientName:      clientName,
		Creator:         req.Creator,
		Title:           req.Title,
		Framework:       req.Framework,
		Scope:           req.Scope,
		ControlsInScope: req.ControlsInScope,
		StartDate:       req.StartDate,
		DueDate:         req.DueDate,
		Stakeholders:    slices.Clone(req.Stakeholders),
		CreatedAt:       s.now(),
	}
	s.assessments = append(s.assessments, a)
	return a, nil
}

// Assessments lists assessments, filtered by organization when clientName is set.
func (s *Store) Assessments(clientName string) []models.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Assessment{}
	for _, a := range s.assessments {
		if clientName == "" || a.ClientName == clientName {
			out = append(out, a)
		}
	}
	return out
}

// StartProfile queues a threat-profiling run. A finished run is replaced;
// one still in flight is an error.
func (s *Store) StartProfile(clientName string) (models.ThreatProfileStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[clientName]; !ok {
		return models.ThreatProfileStatus{}, errOrgNotFound
	}
	next := models.ThreatProfileStatus{
		ClientName: clientName,
		Status:     models.ProfileQueued,
		Message:    "Queued",
		UpdatedAt:  s.now(),
	}
	if prev, ok := s.profiles[clientName]; ok {
		if err := workflow.Validate(prev.status, next); err != nil {
			return prev.status, fmt.Errorf("%w: %v", errProfileRunning, err)
		}
	}
	s.profiles[clientName] = &profileRun{status: next}
	return next, nil
}

// ProfileStatus advances the run by one step and returns its status.
func (s *Store) ProfileStatus(clientName string) (models.ThreatProfileStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.profiles[clientName]
	if !ok {
		return models.ThreatProfileStatus{}, errNoProfile
	}
	if run.status.Status.IsTerminal() {
		return run.status, nil
	}

	next := run.status
	next.Progress = min(100, next.Progress+s.step)
	next.Status = models.ProfileRunning
	next.Message = fmt.Sprintf("Analyzing exposure (%d%%)", next.Progress)
	if next.Progress >= 100 {
		next.Status = models.ProfileCompleted
		next.Message = "Completed"
	}
	next.UpdatedAt = s.now()
	if err := workflow.Validate(run.status, next); err != nil {
		next = run.status
		next.Status = models.ProfileFailed
		next.Message = err.Error()
		next.UpdatedAt = s.now()
	}
	run.status = next
	return next, nil
}

// ProfileReport returns the markdown report of a completed run.
func (s *Store) ProfileReport(clientName string) (models.ThreatProfileReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.profiles[clientName]
	if !ok {
		return models.ThreatProfileReport{}, errNoProfile
	}
	if run.status.Status != models.ProfileCompleted {
		return models.ThreatProfileReport{}, errReportNotReady
	}
	org := s.orgs[clientName]
	return models.ThreatProfileReport{
		ClientName:  clientName,
		Summary:     renderReport(org),
		GeneratedAt: run.status.UpdatedAt,
	}, nil
}

func renderReport(org *models.Organization) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Threat profile: %s\n\n", org.OrgName)
	fmt.Fprintf(&b, "**Domain:** `%s`  \n", org.OrgDomain)
	if org.Sector != "" {
		fmt.Fprintf(&b, "**Sector:** %s  \n", org.Sector)
	}
	if len(org.CountriesOfOperation) > 0 {
		fmt.Fprintf(&b, "**Operates in:** %s  \n", strings.Join(org.CountriesOfOperation, ", "))
	}
	if org.EmployeeCount > 0 {
		fmt.Fprintf(&b, "**Employees:** %s  \n", humanize.Comma(int64(org.EmployeeCount)))
	}
	b.WriteString("\n## Findings\n\n")
	b.WriteString("| Area | Rating |\n|---|---|\n")
	b.WriteString("| Phishing exposure | Medium |\n")
	b.WriteString("| External attack surface | Low |\n")
	b.WriteString("| Credential leaks | Low |\n")
	return b.String()
}

// Checkout creates a hosted checkout URL for a plan.
func (s *Store) Checkout(plan string) (models.CheckoutSession, error) {
	switch plan {
	case "starter", "pro", "enterprise":
	default:
		return models.CheckoutSession{}, fmt.Errorf("Unknown plan %q", plan)
	}
	return models.CheckoutSession{
		URL: "https://checkout.bastion.dev/c/" + uuid.NewString() + "?plan=" + plan,
	}, nil
}
