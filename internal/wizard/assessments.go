package wizard

import (
	"context"
	"strings"

	"github.com/marcus/bastion/internal/form"
	"github.com/marcus/bastion/internal/models"
)

// AssessmentCreateStrategy submits the assessment-create wizard for the
// organization clientName (empty means the caller's active organization).
func AssessmentCreateStrategy(svc AssessmentService, clientName string) form.Strategy {
	c := MustCatalog(AssessmentCreate)
	return form.Strategy{
		Required: requiredFrom(c),
		Build: func(s *form.Store) (form.Mutation, error) {
			controls, err := whole(c, s, "controlsInScope")
			if err != nil {
				return nil, err
			}
			req := models.CreateAssessmentRequest{
				AssessmentID:    trimmed(s, "assessmentId"),
				Creator:         trimmed(s, "creator"),
				ClientName:      clientName,
				Title:           trimmed(s, "title"),
				Framework:       trimmed(s, "framework"),
				Scope:           strings.TrimSpace(s.String("scope")),
				ControlsInScope: controls,
				StartDate:       trimmed(s, "startDate"),
				DueDate:         trimmed(s, "dueDate"),
				Stakeholders:    s.List("stakeholders"),
			}
			if err := check(c, req); err != nil {
				return nil, err
			}
			// ISO dates order lexically.
			if req.StartDate != "" && req.DueDate != "" && req.DueDate < req.StartDate {
				return nil, &form.ValidationError{Field: "dueDate", Message: "Due date must be on or after the start date"}
			}
			return func(ctx context.Context) (any, error) {
				return svc.CreateAssessment(ctx, req)
			}, nil
		},
		Msgs: form.Messages{
			Success:  "Assessment created",
			Fallback: "Failed to create assessment",
		},
	}
}

// NewAssessmentCreate returns a controller for the assessment-create wizard.
func NewAssessmentCreate(svc AssessmentService, clientName string, opts ...form.Option) *form.Controller {
	return form.New(MustCatalog(AssessmentCreate), AssessmentCreateStrategy(svc, clientName), opts...)
}
