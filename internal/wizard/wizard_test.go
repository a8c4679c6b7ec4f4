package wizard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

type fakeService struct {
	creates   []models.CreateOrgRequest
	leCreates []models.CreateLEOrgRequest
	updates   []models.UpdateOrgRequest
	updatedOf []string
	asmts     []models.CreateAssessmentRequest
	err       error
}

func (f *fakeService) calls() int {
	return len(f.creates) + len(f.leCreates) + len(f.updates) + len(f.asmts)
}

func (f *fakeService) CreateOrg(_ context.Context, req models.CreateOrgRequest) (*models.Organization, error) {
	f.creates = append(f.creates, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Organization{ClientName: "acme", OrgName: req.OrgName, OrgDomain: req.OrgDomain}, nil
}

func (f *fakeService) CreateLEOrg(_ context.Context, req models.CreateLEOrgRequest) (*models.Organization, error) {
	f.leCreates = append(f.leCreates, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Organization{ClientName: "acme", Kind: models.OrgKindLE}, nil
}

func (f *fakeService) UpdateOrg(_ context.Context, clientName string, req models.UpdateOrgRequest) (*models.Organization, error) {
	f.updates = append(f.updates, req)
	f.updatedOf = append(f.updatedOf, clientName)
	if f.err != nil {
		return nil, f.err
	}
	org := &models.Organization{ClientName: clientName}
	req.Apply(org)
	return org, nil
}

func (f *fakeService) CreateAssessment(_ context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	f.asmts = append(f.asmts, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Assessment{AssessmentID: req.AssessmentID, Creator: req.Creator}, nil
}

// scheduler records the close delay instead of waiting for it.
type scheduler struct {
	delay time.Duration
	fn    func()
}

func (s *scheduler) after(d time.Duration, fn func()) {
	s.delay = d
	s.fn = fn
}

func TestCatalogsAreWellFormed(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{AssessmentCreate, OrgCreate, OrgLE, OrgUpdate}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			c, err := Catalog(name)
			require.NoError(t, err)
			s := c.NewStore()
			for i := range c.Len() {
				fields := c.FieldsFor(i)
				assert.NotEmpty(t, fields, "section %d", i)
				assert.NotEmpty(t, c.Title(i))
				for _, f := range fields {
					assert.True(t, s.Has(f), "%s has no default", f)
					m, ok := c.Meta(f)
					assert.True(t, ok)
					assert.NotEmpty(t, m.Label)
				}
			}
		})
	}

	_, err := Catalog("nope")
	assert.Error(t, err)
}

func TestOrgCatalogSections(t *testing.T) {
	c := MustCatalog(OrgCreate)
	require.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"orgName", "orgDomain", "sector"}, c.FieldsFor(0))

	le := MustCatalog(OrgLE)
	require.Equal(t, 4, le.Len())
	assert.Equal(t, "Enterprise", le.Title(3))
	assert.Equal(t, []string{"employeeCount", "annualRevenue", "subsidiaries"}, le.FieldsFor(3))

	up := MustCatalog(OrgUpdate)
	for i := range up.Len() {
		assert.NotContains(t, up.FieldsFor(i), "orgName")
		assert.NotContains(t, up.FieldsFor(i), "orgDomain")
	}
}

func TestOrgCreateSuccess(t *testing.T) {
	svc := &fakeService{}
	sched := &scheduler{}
	var done any
	c := NewOrgCreate(svc,
		form.WithScheduler(sched.after),
		form.WithOnDone(func(p any) { done = p }),
	)

	c.Set("orgName", "Acme")
	c.Set("orgDomain", "acme.com")
	c.Set("countriesOfOperation", "USA, Canada")

	out := c.Submit(context.Background())
	require.True(t, out.OK())
	require.Len(t, svc.creates, 1)
	assert.Equal(t, "Acme", svc.creates[0].OrgName)
	assert.Equal(t, "acme.com", svc.creates[0].OrgDomain)
	assert.Equal(t, []string{"USA", "Canada"}, svc.creates[0].CountriesOfOperation)

	assert.True(t, c.Store().IsPristine())
	assert.Equal(t, "Organization created", c.Success())
	assert.Empty(t, c.Error())

	assert.Nil(t, done)
	assert.Equal(t, form.DefaultCloseDelay, sched.delay)
	require.NotNil(t, sched.fn)
	sched.fn()
	org, ok := done.(*models.Organization)
	require.True(t, ok)
	assert.Equal(t, "acme", org.ClientName)
}

func TestOrgCreateRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr string
	}{
		{"all blank", nil, "Organization name is required"},
		{"blank domain", map[string]string{"orgName": "Acme"}, "Domain is required"},
		{"whitespace name", map[string]string{"orgName": "   ", "orgDomain": "acme.com"}, "Organization name is required"},
		{"bad url", map[string]string{"orgName": "Acme", "orgDomain": "acme.com", "websiteUrl": "not a url"}, "Website URL must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			c := NewOrgCreate(svc)
			for k, v := range tt.values {
				c.Set(k, v)
			}
			out := c.Submit(context.Background())
			assert.False(t, out.OK())
			assert.Zero(t, svc.calls())
			assert.Equal(t, tt.wantErr, c.Error())
			assert.False(t, c.Pending())
		})
	}
}

func TestOrgCreateFailureKeepsValues(t *testing.T) {
	svc := &fakeService{err: errors.New("connection refused")}
	c := NewOrgCreate(svc)
	c.Set("orgName", "Acme")
	c.Set("orgDomain", "acme.com")

	out := c.Submit(context.Background())
	assert.False(t, out.OK())
	assert.Equal(t, "Failed to create organization", c.Error())
	assert.Equal(t, "Acme", c.Store().String("orgName"))
}

func TestOrgLENumbersAndLists(t *testing.T) {
	svc := &fakeService{}
	c := NewOrgLE(svc)
	c.Set("orgName", "Acme Holdings")
	c.Set("orgDomain", "acme.com")
	c.Set("employeeCount", "1200")
	c.Set("annualRevenue", "abc")
	c.Set("subsidiaries", "Acme Labs,, Acme EU ")

	out := c.Submit(context.Background())
	require.True(t, out.OK())
	require.Len(t, svc.leCreates, 1)
	req := svc.leCreates[0]
	assert.Equal(t, 1200, req.EmployeeCount)
	assert.Zero(t, req.AnnualRevenue)
	assert.Equal(t, []string{"Acme Labs", "Acme EU"}, req.Subsidiaries)
	assert.Equal(t, "LE organization created", c.Success())
}

func TestOrgLERejectsNegative(t *testing.T) {
	svc := &fakeService{}
	c := NewOrgLE(svc)
	c.Set("orgName", "Acme Holdings")
	c.Set("orgDomain", "acme.com")
	c.Set("employeeCount", -5.0)

	c.Submit(context.Background())
	assert.Zero(t, svc.calls())
	assert.Equal(t, "Employees must not be negative", c.Error())
}

func TestHugeCountsRejected(t *testing.T) {
	svc := &fakeService{}
	le := NewOrgLE(svc)
	le.Set("orgName", "Acme Holdings")
	le.Set("orgDomain", "acme.com")
	le.Set("employeeCount", 1e30)

	le.Submit(context.Background())
	assert.Equal(t, "Employees is too large", le.Error())

	asmt := NewAssessmentCreate(svc, "acme")
	asmt.Set("assessmentId", "ASM-1")
	asmt.Set("creator", "dana")
	asmt.Set("controlsInScope", 1e30)

	asmt.Submit(context.Background())
	assert.Equal(t, "Controls in scope is too large", asmt.Error())
	assert.Zero(t, svc.calls())
}

func TestOrgUpdatePrefillAndSubmit(t *testing.T) {
	svc := &fakeService{}
	org := models.Organization{
		ClientName:           "acme",
		Sector:               "Technology",
		CountriesOfOperation: []string{"USA", "Canada"},
	}
	c := NewOrgUpdate(svc, org)
	assert.Equal(t, "Technology", c.Store().String("sector"))
	assert.Equal(t, "USA, Canada", c.Store().String("countriesOfOperation"))

	c.Set("countriesOfOperation", "USA")
	out := c.Submit(context.Background())
	require.True(t, out.OK())
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "acme", svc.updatedOf[0])
	require.NotNil(t, svc.updates[0].CountriesOfOperation)
	assert.Equal(t, []string{"USA"}, *svc.updates[0].CountriesOfOperation)
	assert.Equal(t, "Technology", *svc.updates[0].Sector)

	// Reset returns to the prefilled values.
	assert.Equal(t, "USA, Canada", c.Store().String("countriesOfOperation"))
}

func TestOrgUpdateServerMessage(t *testing.T) {
	svc := &fakeService{err: &api.APIError{
		Method: http.MethodPatch,
		Path:   "/orgs/acme",
		Status: http.StatusConflict,
		Data:   api.ErrorData{Message: "Domain in use"},
	}}
	c := NewOrgUpdate(svc, models.Organization{ClientName: "acme", Sector: "Technology"})
	c.Set("websiteUrl", "https://acme.com")

	out := c.Submit(context.Background())
	assert.False(t, out.OK())
	assert.Equal(t, "Domain in use", c.Error())
	assert.Equal(t, "https://acme.com", c.Store().String("websiteUrl"))
	assert.Equal(t, "Technology", c.Store().String("sector"))
	assert.Empty(t, c.Success())
}

func TestAssessmentCreate(t *testing.T) {
	svc := &fakeService{}
	c := NewAssessmentCreate(svc, "acme")
	assert.Equal(t, "ISO 27001", c.Store().String("framework"))

	c.Set("assessmentId", "ASM-1")
	c.Set("creator", "dana")
	c.Set("controlsInScope", "42")
	c.Set("startDate", "2026-01-10")
	c.Set("dueDate", "2026-02-10")
	c.Set("stakeholders", "ciso, it")

	out := c.Submit(context.Background())
	require.True(t, out.OK())
	require.Len(t, svc.asmts, 1)
	req := svc.asmts[0]
	assert.Equal(t, "acme", req.ClientName)
	assert.Equal(t, 42, req.ControlsInScope)
	assert.Equal(t, []string{"ciso", "it"}, req.Stakeholders)
	assert.Equal(t, "Assessment created", c.Success())
}

func TestAssessmentDates(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		due     string
		wantErr string
	}{
		{"bad format", "10/01/2026", "", "Start date must be a date (YYYY-MM-DD)"},
		{"due before start", "2026-03-01", "2026-02-01", "Due date must be on or after the start date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			c := NewAssessmentCreate(svc, "")
			c.Set("assessmentId", "ASM-1")
			c.Set("creator", "dana")
			c.Set("startDate", tt.start)
			c.Set("dueDate", tt.due)

			c.Submit(context.Background())
			assert.Zero(t, svc.calls())
			assert.Equal(t, tt.wantErr, c.Error())
		})
	}
}

func TestAssessmentRequired(t *testing.T) {
	svc := &fakeService{}
	c := NewAssessmentCreate(svc, "acme")
	c.Set("assessmentId", "ASM-1")

	c.Submit(context.Background())
	assert.Zero(t, svc.calls())
	assert.Equal(t, "Creator is required", c.Error())
}
