package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marcus/bastion/internal/models"
)

// CreateAssessment calls POST /assessments.
func (c *Client) CreateAssessment(ctx context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, http.MethodPost, "/assessments", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssessments calls GET /assessments, optionally filtered by organization.
func (c *Client) ListAssessments(ctx context.Context, clientName string) ([]models.Assessment, error) {
	path := "/assessments"
	if clientName != "" {
		path += "?client_name=" + url.QueryEscape(clientName)
	}
	var out []models.Assessment
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartThreatProfile calls POST /threat-profiling/:client_name.
func (c *Client) StartThreatProfile(ctx context.Context, clientName string) (*models.ThreatProfileStatus, error) {
	var st models.ThreatProfileStatus
	if err := c.do(ctx, http.MethodPost, "/threat-profiling/"+url.PathEscape(clientName), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ThreatProfileStatus calls GET /threat-profiling/:client_name/status.
func (c *Client) ThreatProfileStatus(ctx context.Context, clientName string) (*models.ThreatProfileStatus, error) {
	var st models.ThreatProfileStatus
	if err := c.do(ctx, http.MethodGet, "/threat-profiling/"+url.PathEscape(clientName)+"/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ThreatProfileReport calls GET /threat-profiling/:client_name/report.
func (c *Client) ThreatProfileReport(ctx context.Context, clientName string) (*models.ThreatProfileReport, error) {
	var r models.ThreatProfileReport
	if err := c.do(ctx, http.MethodGet, "/threat-profiling/"+url.PathEscape(clientName)+"/report", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateCheckoutSession calls POST /payments/checkout-session and returns
// the hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/payments/checkout-session", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
