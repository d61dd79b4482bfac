package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/httputil"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/company"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/engagement"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/validation"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "internal-audit-be"

// handlers serves the company, engagement and reference data endpoints.
type handlers struct {
	companies   companyService
	engagements engagementService
	master      masterService
	validator   payloadValidator
	logger      logrus.FieldLogger
}

// mutationResponse acknowledges a write.
type mutationResponse struct {
	Message             string `json:"message"`
	CompanyID           string `json:"company_id,omitempty"`
	EngagementID        string `json:"engagement_id,omitempty"`
	EngagementContextID string `json:"engagement_context_id,omitempty"`
	Count               *int   `json:"count,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type meUser struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

type meService struct {
	ServiceID string   `json:"service_id"`
	Scopes    []string `json:"scopes"`
}

type meResponse struct {
	User    *meUser    `json:"user,omitempty"`
	Service *meService `json:"service,omitempty"`
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	_ = httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok", Service: ServiceName})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleMe reports the identities the authentication gate attached.
func handleMe(w http.ResponseWriter, r *http.Request) {
	var resp meResponse
	if user, ok := auth.GetUserFromContext(r.Context()); ok {
		resp.User = &meUser{UserID: user.UserID, TenantID: user.TenantID, Email: user.Email}
	}
	if svc, ok := auth.GetServiceFromContext(r.Context()); ok {
		scopes := svc.Scopes
		if scopes == nil {
			scopes = []string{}
		}
		resp.Service = &meService{ServiceID: svc.ServiceID, Scopes: scopes}
	}
	_ = httputil.WriteJSON(w, http.StatusOK, resp)
}

// decodePayload reads the body, checks it against schema and decodes it into
// dst. It writes a 400 reply and returns false on any failure.
func (h *handlers) decodePayload(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	raw, err := httputil.ReadBody(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "request body is empty")
		return false
	}
	if h.validator != nil {
		if err := h.validator.ValidateJSON(schema, raw); err != nil {
			writeServiceError(w, r, h.logger, errorMessages{}, err)
			return false
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// actingUserID is the id of the attached user identity, if any.
func actingUserID(ctx context.Context) string {
	if user, ok := auth.GetUserFromContext(ctx); ok {
		return user.UserID
	}
	return ""
}

func (h *handlers) searchCompanies(w http.ResponseWriter, r *http.Request) {
	results, err := h.companies.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *handlers) getCompany(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	detail, err := h.companies.Get(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *handlers) createCompany(w http.ResponseWriter, r *http.Request) {
	var in company.CreateInput
	if !h.decodePayload(w, r, validation.CompanyCreate, &in) {
		return
	}

	actorID := actingUserID(r.Context())
	if actorID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	companyID, err := h.companies.Create(r.Context(), actorID, in)
	if err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Company created", CompanyID: companyID})
}

func (h *handlers) upsertRegulatory(w http.ResponseWriter, r *http.Request) {
	var in company.RegulatoryInput
	if !h.decodePayload(w, r, validation.RegulatoryUpsert, &in) {
		return
	}
	if err := h.companies.UpsertRegulatory(r.Context(), in); err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Regulatory data upserted", CompanyID: in.CompanyID})
}

func (h *handlers) upsertIndustrySize(w http.ResponseWriter, r *http.Request) {
	var in company.IndustrySizeInput
	if !h.decodePayload(w, r, validation.IndustrySizeUpsert, &in) {
		return
	}
	if err := h.companies.UpsertIndustrySize(r.Context(), in); err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Industry/size profile upserted", CompanyID: in.CompanyID})
}

func (h *handlers) replaceTaxRegistrations(w http.ResponseWriter, r *http.Request) {
	var in company.TaxRegistrationsInput
	if !h.decodePayload(w, r, validation.TaxRegistrationReplace, &in) {
		return
	}
	n, err := h.companies.ReplaceTaxRegistrations(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Tax registrations replaced", CompanyID: in.CompanyID, Count: &n})
}

func (h *handlers) replaceManufacturing(w http.ResponseWriter, r *http.Request) {
	var in company.ManufacturingInput
	if !h.decodePayload(w, r, validation.ManufacturingReplace, &in) {
		return
	}
	n, err := h.companies.ReplaceManufacturing(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, companyMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Manufacturing list replaced", CompanyID: in.CompanyID, Count: &n})
}

func (h *handlers) createEngagement(w http.ResponseWriter, r *http.Request) {
	var in engagement.CreateInput
	if !h.decodePayload(w, r, validation.EngagementCreate, &in) {
		return
	}
	engagementID, err := h.engagements.Create(r.Context(), actingUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, h.logger, engagementMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{Message: "Engagement created", EngagementID: engagementID})
}

func (h *handlers) saveEngagementContext(w http.ResponseWriter, r *http.Request) {
	var in engagement.ContextInput
	if !h.decodePayload(w, r, validation.EngagementContext, &in) {
		return
	}
	version, err := h.engagements.SaveContext(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, engagementMessages, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, mutationResponse{
		Message:             "Engagement context saved",
		EngagementID:        in.EngagementID,
		EngagementContextID: version.EngagementContextID,
	})
}

func (h *handlers) getEngagementContext(w http.ResponseWriter, r *http.Request) {
	engagementID := r.URL.Query().Get("engagement_id")
	if engagementID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "engagement_id is required")
		return
	}
	version, err := h.engagements.CurrentContext(r.Context(), engagementID)
	if err != nil {
		writeServiceError(w, r, h.logger, errorMessages{NotFound: "Engagement context not found"}, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, version)
}

// list serves a reference list loaded by fn.
func list[T any](h *handlers, fn func(*http.Request) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := fn(r)
		if err != nil {
			writeServiceError(w, r, h.logger, errorMessages{}, err)
			return
		}
		_ = httputil.WriteJSON(w, http.StatusOK, rows)
	}
}
