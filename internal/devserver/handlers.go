package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marcus/bastion/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errDomainInUse), errors.Is(err, errOrgExists),
		errors.Is(err, errAssessmentExists), errors.Is(err, errReportNotReady),
		errors.Is(err, errProfileRunning):
		return http.StatusConflict
	case errors.Is(err, errOrgNotFound), errors.Is(err, errNoProfile):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// validationMessage turns validator errors into a single readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fe.Field()+" is required")
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	return strings.Join(msgs, "; ")
}

func (s *Server) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	org, err := s.store.CreateOrg(req, models.OrgKindStandard, 0, 0, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (s *Server) handleCreateLEOrg(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLEOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	org, err := s.store.CreateOrg(req.CreateOrgRequest, models.OrgKindLE, req.EmployeeCount, req.AnnualRevenue, req.Subsidiaries)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (s *Server) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	scope, err := s.store.Scope(s.config.Managed)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scope)
}

func (s *Server) handleListAllOrgs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.All())
}

func (s *Server) handleSwitchOrg(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.Switch(r.PathValue("client_name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleGetOrg(w http.ResponseWriter, r *http.Request) {
	org, err := s.store.GetOrg(r.PathValue("client_name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleUpdateOrg(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOrgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsEmpty() {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	org, err := s.store.UpdateOrg(r.PathValue("client_name"), req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleDeleteOrg(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOrg(r.PathValue("client_name")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	a, err := s.store.CreateAssessment(req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Assessments(r.URL.Query().Get("client_name")))
}

func (s *Server) handleStartProfile(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.StartProfile(r.PathValue("client_name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

func (s *Server) handleProfileStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.ProfileStatus(r.PathValue("client_name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleProfileReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.store.ProfileReport(r.PathValue("client_name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.ClientName != "" {
		if _, err := s.store.GetOrg(req.ClientName); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	sess, err := s.store.Checkout(req.Plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}
