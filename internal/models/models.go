package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// OrgKind distinguishes standard organizations from the LE onboarding variant.
type OrgKind string

const (
	OrgKindStandard OrgKind = "standard"
	OrgKindLE       OrgKind = "le"
)

// Organization is a tenant on the platform. ClientName is the URL-safe
// identifier used in /orgs/:client_name paths.
type Organization struct {
	ClientName           string    `json:"client_name"`
	OrgName              string    `json:"orgName"`
	OrgDomain            string    `json:"orgDomain"`
	Kind                 OrgKind   `json:"kind,omitempty"`
	Sector               string    `json:"sector,omitempty"`
	WebsiteURL           string    `json:"websiteUrl,omitempty"`
	CountriesOfOperation []string  `json:"countriesOfOperation,omitempty"`
	HomeURL              string    `json:"homeUrl,omitempty"`
	AboutUsURL           string    `json:"aboutUsUrl,omitempty"`
	AdditionalDetails    string    `json:"additionalDetails,omitempty"`
	EmployeeCount        int       `json:"employeeCount,omitempty"`
	AnnualRevenue        float64   `json:"annualRevenue,omitempty"`
	Subsidiaries         []string  `json:"subsidiaries,omitempty"`
	Plan                 string    `json:"plan,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// CreateOrgRequest is the body of POST /orgs.
type CreateOrgRequest struct {
	OrgName              string   `json:"orgName" validate:"required"`
	OrgDomain            string   `json:"orgDomain" validate:"required"`
	Sector               string   `json:"sector,omitempty"`
	WebsiteURL           string   `json:"websiteUrl,omitempty" validate:"omitempty,url"`
	CountriesOfOperation []string `json:"countriesOfOperation,omitempty"`
	HomeURL              string   `json:"homeUrl,omitempty" validate:"omitempty,url"`
	AboutUsURL           string   `json:"aboutUsUrl,omitempty" validate:"omitempty,url"`
	AdditionalDetails    string   `json:"additionalDetails,omitempty"`
}

// CreateLEOrgRequest is the body of POST /orgs/le.
type CreateLEOrgRequest struct {
	CreateOrgRequest
	EmployeeCount int      `json:"employeeCount" validate:"gte=0"`
	AnnualRevenue float64  `json:"annualRevenue" validate:"gte=0"`
	Subsidiaries  []string `json:"subsidiaries,omitempty"`
}

// UpdateOrgRequest is the body of PATCH /orgs/:client_name. Nil fields are
// left untouched by the server; name and domain cannot be changed.
type UpdateOrgRequest struct {
	Sector               *string   `json:"sector,omitempty"`
	WebsiteURL           *string   `json:"websiteUrl,omitempty"`
	CountriesOfOperation *[]string `json:"countriesOfOperation,omitempty"`
	HomeURL              *string   `json:"homeUrl,omitempty"`
	AboutUsURL           *string   `json:"aboutUsUrl,omitempty"`
	AdditionalDetails    *string   `json:"additionalDetails,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (r UpdateOrgRequest) IsEmpty() bool {
	return r.Sector == nil && r.WebsiteURL == nil && r.CountriesOfOperation == nil &&
		r.HomeURL == nil && r.AboutUsURL == nil && r.AdditionalDetails == nil
}

// Apply copies the set fields of r onto org.
func (r UpdateOrgRequest) Apply(org *Organization) {
	if r.Sector != nil {
		org.Sector = *r.Sector
	}
	if r.WebsiteURL != nil {
		org.WebsiteURL = *r.WebsiteURL
	}
	if r.CountriesOfOperation != nil {
		org.CountriesOfOperation = *r.CountriesOfOperation
	}
	if r.HomeURL != nil {
		org.HomeURL = *r.HomeURL
	}
	if r.AboutUsURL != nil {
		org.AboutUsURL = *r.AboutUsURL
	}
	if r.AdditionalDetails != nil {
		org.AdditionalDetails = *r.AdditionalDetails
	}
}

// ScopeKind tags an OrgScope.
type ScopeKind int

const (
	// ScopeSingle: the caller belongs to exactly one organization.
	ScopeSingle ScopeKind = iota
	// ScopeManaged: the caller is a provider managing client organizations.
	ScopeManaged
)

func (k ScopeKind) String() string {
	if k == ScopeManaged {
		return "managed"
	}
	return "single"
}

// OrgScope is the response of GET /orgs, resolved once at decode time.
// For ScopeSingle, Org is the caller's organization and Clients is empty.
// For ScopeManaged, Org is the managing organization and Clients are the
// organizations it manages.
type OrgScope struct {
	Kind    ScopeKind
	Org     *Organization
	Clients []Organization
}

type orgScopeWire struct {
	ManagedOrg *Organization  `json:"managed_org,omitempty"`
	ClientOrgs []Organization `json:"client_orgs,omitempty"`
	Org        *Organization  `json:"org,omitempty"`
}

// ErrUnknownScope is returned when GET /orgs carries neither shape.
var ErrUnknownScope = errors.New("unrecognized organization scope")

// UnmarshalJSON resolves the wire shape into a tagged scope.
func (s *OrgScope) UnmarshalJSON(data []byte) error {
	var w orgScopeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.ManagedOrg != nil:
		*s = OrgScope{Kind: ScopeManaged, Org: w.ManagedOrg, Clients: w.ClientOrgs}
	case w.Org != nil:
		*s = OrgScope{Kind: ScopeSingle, Org: w.Org}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownScope, bytes.TrimSpace(data))
	}
	return nil
}

// MarshalJSON writes the wire shape for the scope's kind.
func (s OrgScope) MarshalJSON() ([]byte, error) {
	if s.Kind == ScopeManaged {
		clients := s.Clients
		if clients == nil {
			clients = []Organization{}
		}
		return json.Marshal(orgScopeWire{ManagedOrg: s.Org, ClientOrgs: clients})
	}
	return json.Marshal(orgScopeWire{Org: s.Org})
}

// Orgs returns every organization visible in the scope: the scope's own
// organization first, then its clients.
func (s OrgScope) Orgs() []Organization {
	var out []Organization
	if s.Org != nil {
		out = append(out, *s.Org)
	}
	return append(out, s.Clients...)
}

// Find returns the organization with the given client name.
func (s OrgScope) Find(clientName string) (*Organization, bool) {
	for _, o := range s.Orgs() {
		if o.ClientName == clientName {
			return &o, true
		}
	}
	return nil, false
}

// Assessment is a security assessment raised against an organization.
type Assessment struct {
	AssessmentID    string    `json:"assessmentId"`
	ClientName      string    `json:"client_name,omitempty"`
	Creator         string    `json:"creator"`
	Title           string    `json:"title,omitempty"`
	Framework       string    `json:"framework,omitempty"`
	Scope           string    `json:"scope,omitempty"`
	ControlsInScope int       `json:"controlsInScope,omitempty"`
	StartDate       string    `json:"startDate,omitempty"`
	DueDate         string    `json:"dueDate,omitempty"`
	Stakeholders    []string  `json:"stakeholders,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateAssessmentRequest is the body of POST /assessments.
type CreateAssessmentRequest struct {
	AssessmentID    string   `json:"assessmentId" validate:"required"`
	Creator         string   `json:"creator" validate:"required"`
	ClientName      string   `json:"client_name,omitempty"`
	Title           string   `json:"title,omitempty"`
	Framework       string   `json:"framework,omitempty"`
	Scope           string   `json:"scope,omitempty"`
	ControlsInScope int      `json:"controlsInScope" validate:"gte=0"`
	StartDate       string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate         string   `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Stakeholders    []string `json:"stakeholders,omitempty"`
}

// ProfileState is the lifecycle state of a threat-profiling run.
type ProfileState string

const (
	ProfileQueued    ProfileState = "queued"
	ProfileRunning   ProfileState = "running"
	ProfileCompleted ProfileState = "completed"
	ProfileFailed    ProfileState = "failed"
)

// IsTerminal reports whether no further progress will be made.
func (s ProfileState) IsTerminal() bool {
	return s == ProfileCompleted || s == ProfileFailed
}

// ThreatProfileStatus is the progress of a threat-profiling run.
type ThreatProfileStatus struct {
	ClientName string       `json:"client_name"`
	Status     ProfileState `json:"status"`
	Progress   int          `json:"progress"`
	Message    string       `json:"message,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Done reports whether the run reached a terminal state.
func (s ThreatProfileStatus) Done() bool {
	return s.Status.IsTerminal()
}

// ThreatProfileReport is the result of a completed run. Summary is markdown.
type ThreatProfileReport struct {
	ClientName  string    `json:"client_name"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// CheckoutRequest is the body of POST /payments/checkout-session.
type CheckoutRequest struct {
	Plan       string `json:"plan" validate:"required"`
	ClientName string `json:"client_name,omitempty"`
}

// CheckoutSession carries the redirect URL of a hosted checkout page.
type CheckoutSession struct {
	URL string `json:"url"`
}

// ActivityEntry is one row of the local activity log.
type ActivityEntry struct {
	ID        string
	Timestamp time.Time
	Action    string
	Entity    string
	EntityID  string
	OK        bool
	Message   string
}
