package api

import (
	"context"
	"net/http"

	"github.com/marcus/bastion/internal/models"
)

// CreateOrg calls POST /orgs.
func (c *Client) CreateOrg(ctx context.Context, req models.CreateOrgRequest) (*models.Organization, error) {
	var org models.Organization
	if err := c.do(ctx, http.MethodPost, "/orgs", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateLEOrg calls POST /orgs/le.
func (c *Client) CreateLEOrg(ctx context.Context, req models.CreateLEOrgRequest) (*models.Organization, error) {
	var org models.Organization
	if err := c.do(ctx, http.MethodPost, "/orgs/le", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrgs calls GET /orgs and resolves the caller's scope.
func (c *Client) ListOrgs(ctx context.Context) (*models.OrgScope, error) {
	var scope models.OrgScope
	if err := c.do(ctx, http.MethodGet, "/orgs", nil, &scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

// GetOrg calls GET /orgs/:client_name.
func (c *Client) GetOrg(ctx context.Context, clientName string) (*models.Organization, error) {
	var org models.Organization
	if err := c.do(ctx, http.MethodGet, orgPath(clientName), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrg calls PATCH /orgs/:client_name.
func (c *Client) UpdateOrg(ctx context.Context, clientName string, req models.UpdateOrgRequest) (*models.Organization, error) {
	var org models.Organization
	if err := c.do(ctx, http.MethodPatch, orgPath(clientName), req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// SwitchOrg calls GET /orgs/switch/:client_name, making it the caller's
// active organization server-side.
func (c *Client) SwitchOrg(ctx context.Context, clientName string) (*models.Organization, error) {
	var org models.Organization
	if err := c.do(ctx, http.MethodGet, orgPath(clientName, "switch"), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListAllOrgs calls GET /orgs/all (platform administrators only).
func (c *Client) ListAllOrgs(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := c.do(ctx, http.MethodGet, "/orgs/all", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// DeleteOrg calls DELETE /orgs/:client_name.
func (c *Client) DeleteOrg(ctx context.Context, clientName string) error {
	return c.do(ctx, http.MethodDelete, orgPath(clientName), nil, nil)
}
