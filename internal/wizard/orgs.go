package wizard

import (
	"context"
	"strings"

	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

func orgCreateRequest(s *form.Store) models.CreateOrgRequest {
	return models.CreateOrgRequest{
		OrgName:              trimmed(s, "orgName"),
		OrgDomain:            trimmed(s, "orgDomain"),
		Sector:               trimmed(s, "sector"),
		WebsiteURL:           trimmed(s, "websiteUrl"),
		CountriesOfOperation: s.List("countriesOfOperation"),
		HomeURL:              trimmed(s, "homeUrl"),
		AboutUsURL:           trimmed(s, "aboutUsUrl"),
		AdditionalDetails:    strings.TrimSpace(s.String("additionalDetails")),
	}
}

// OrgCreateStrategy submits the org-create wizard through svc.
func OrgCreateStrategy(svc OrgService) form.Strategy {
	c := MustCatalog(OrgCreate)
	return form.Strategy{
		Required: requiredFrom(c),
		Build: func(s *form.Store) (form.Mutation, error) {
			req := orgCreateRequest(s)
			if err := check(c, req); err != nil {
				return nil, err
			}
			return func(ctx context.Context) (any, error) {
				return svc.CreateOrg(ctx, req)
			}, nil
		},
		Msgs: form.Messages{
			Success:  "Organization created",
			Fallback: "Failed to create organization",
		},
	}
}

// OrgLEStrategy submits the org-le wizard through svc.
func OrgLEStrategy(svc OrgService) form.Strategy {
	c := MustCatalog(OrgLE)
	return form.Strategy{
		Required: requiredFrom(c),
		Build: func(s *form.Store) (form.Mutation, error) {
			employees, err := whole(c, s, "employeeCount")
			if err != nil {
				return nil, err
			}
			req := models.CreateLEOrgRequest{
				CreateOrgRequest: orgCreateRequest(s),
				EmployeeCount:    employees,
				AnnualRevenue:    s.Number("annualRevenue"),
				Subsidiaries:     s.List("subsidiaries"),
			}
			if err := check(c, req); err != nil {
				return nil, err
			}
			return func(ctx context.Context) (any, error) {
				return svc.CreateLEOrg(ctx, req)
			}, nil
		},
		Msgs: form.Messages{
			Success:  "LE organization created",
			Fallback: "Failed to create LE organization",
		},
	}
}

// orgLinks carries the URL rules of an update, whose request has only pointers.
type orgLinks struct {
	WebsiteURL string `json:"websiteUrl" validate:"omitempty,url"`
	HomeURL    string `json:"homeUrl" validate:"omitempty,url"`
	AboutUsURL string `json:"aboutUsUrl" validate:"omitempty,url"`
}

// OrgUpdateStrategy submits the org-update wizard for clientName. Every
// field the wizard shows is sent, so a cleared field clears the value.
func OrgUpdateStrategy(svc OrgService, clientName string) form.Strategy {
	c := MustCatalog(OrgUpdate)
	return form.Strategy{
		Build: func(s *form.Store) (form.Mutation, error) {
			sector := trimmed(s, "sector")
			website := trimmed(s, "websiteUrl")
			home := trimmed(s, "homeUrl")
			about := trimmed(s, "aboutUsUrl")
			countries := s.List("countriesOfOperation")
			details := strings.TrimSpace(s.String("additionalDetails"))

			if err := check(c, orgLinks{WebsiteURL: website, HomeURL: home, AboutUsURL: about}); err != nil {
				return nil, err
			}

			req := models.UpdateOrgRequest{
				Sector:               &sector,
				WebsiteURL:           &website,
				CountriesOfOperation: &countries,
				HomeURL:              &home,
				AboutUsURL:           &about,
				AdditionalDetails:    &details,
			}
			return func(ctx context.Context) (any, error) {
				return svc.UpdateOrg(ctx, clientName, req)
			}, nil
		},
		Msgs: form.Messages{
			Success:  "Organization updated",
			Fallback: "Failed to update organization",
		},
	}
}

// OrgValues maps an organization onto the org-update fields.
func OrgValues(org models.Organization) map[string]form.Value {
	return map[string]form.Value{
		"sector":               org.Sector,
		"websiteUrl":           org.WebsiteURL,
		"homeUrl":              org.HomeURL,
		"aboutUsUrl":           org.AboutUsURL,
		"countriesOfOperation": strings.Join(org.CountriesOfOperation, ", "),
		"additionalDetails":    org.AdditionalDetails,
	}
}

// NewOrgCreate returns a controller for the org-create wizard.
func NewOrgCreate(svc OrgService, opts ...form.Option) *form.Controller {
	return form.New(MustCatalog(OrgCreate), OrgCreateStrategy(svc), opts...)
}

// NewOrgLE returns a controller for the org-le wizard.
func NewOrgLE(svc OrgService, opts ...form.Option) *form.Controller {
	return form.New(MustCatalog(OrgLE), OrgLEStrategy(svc), opts...)
}

// NewOrgUpdate returns a controller for editing org, prefilled with its
// current values.
func NewOrgUpdate(svc OrgService, org models.Organization, opts ...form.Option) *form.Controller {
	opts = append([]form.Option{form.WithValues(OrgValues(org))}, opts...)
	return form.New(MustCatalog(OrgUpdate), OrgUpdateStrategy(svc, org.ClientName), opts...)
}
