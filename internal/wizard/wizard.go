// Package wizard defines the concrete sectioned forms of the console: their
// catalogs and the submission strategy that turns each into an API call.
package wizard

import (
	"context"
	"embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

// Wizard names.
const (
	OrgCreate        = "org-create"
	OrgLE            = "org-le"
	OrgUpdate        = "org-update"
	AssessmentCreate = "assessment-create"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

var (
	catalogsOnce sync.Once
	catalogs     map[string]*form.Catalog
	catalogsErr  error
)

func loadCatalogs() {
	catalogs = make(map[string]*form.Catalog)
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		catalogsErr = err
		return
	}
	for _, e := range entries {
		data, err := catalogFS.ReadFile("catalogs/" + e.Name())
		if err != nil {
			catalogsErr = err
			return
		}
		c, err := form.ParseCatalog(data)
		if err != nil {
			catalogsErr = fmt.Errorf("%s: %w", e.Name(), err)
			return
		}
		catalogs[c.Name] = c
	}
}

// Catalog returns the named catalog.
func Catalog(name string) (*form.Catalog, error) {
	catalogsOnce.Do(loadCatalogs)
	if catalogsErr != nil {
		return nil, catalogsErr
	}
	c, ok := catalogs[name]
	if !ok {
		return nil, fmt.Errorf("unknown wizard %q", name)
	}
	return c, nil
}

// MustCatalog is Catalog for the built-in names; it panics on a broken embed.
func MustCatalog(name string) *form.Catalog {
	c, err := Catalog(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Names lists the available wizards.
func Names() []string {
	catalogsOnce.Do(loadCatalogs)
	names := make([]string, 0, len(catalogs))
	for n := range catalogs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// requiredFrom lists the catalog's required fields in display order.
func requiredFrom(c *form.Catalog) []form.Required {
	var out []form.Required
	for i := range c.Len() {
		for _, name := range c.FieldsFor(i) {
			m, _ := c.Meta(name)
			if m.Required {
				out = append(out, form.Required{Field: name, Message: m.Label + " is required"})
			}
		}
	}
	return out
}

// OrgService is the part of the API client the organization wizards call.
type OrgService interface {
	CreateOrg(ctx context.Context, req models.CreateOrgRequest) (*models.Organization, error)
	CreateLEOrg(ctx context.Context, req models.CreateLEOrgRequest) (*models.Organization, error)
	UpdateOrg(ctx context.Context, clientName string, req models.UpdateOrgRequest) (*models.Organization, error)
}

// AssessmentService is the part of the API client the assessment wizard calls.
type AssessmentService interface {
	CreateAssessment(ctx context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error)
}

// trimmed returns the store value for name without surrounding whitespace.
func trimmed(s *form.Store, name string) string {
	return strings.TrimSpace(s.String(name))
}
