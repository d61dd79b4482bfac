package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	auditmiddleware "github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/middleware"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/company"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/engagement"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/master"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/validation"
)

// Fakes

type fakeCompanies struct {
	createFn   func(ctx context.Context, actorID string, in company.CreateInput) (string, error)
	getFn      func(ctx context.Context, companyID string) (*company.Detail, error)
	searchFn   func(ctx context.Context, query string) ([]company.SearchResult, error)
	regFn      func(ctx context.Context, in company.RegulatoryInput) error
	industryFn func(ctx context.Context, in company.IndustrySizeInput) error
	taxFn      func(ctx context.Context, in company.TaxRegistrationsInput) (int, error)
	mfgFn      func(ctx context.Context, in company.ManufacturingInput) (int, error)
}

func (f *fakeCompanies) Create(ctx context.Context, actorID string, in company.CreateInput) (string, error) {
	if f.createFn == nil {
		return "", errors.New("unexpected Create")
	}
	return f.createFn(ctx, actorID, in)
}

func (f *fakeCompanies) Get(ctx context.Context, companyID string) (*company.Detail, error) {
	if f.getFn == nil {
		return nil, errors.New("unexpected Get")
	}
	return f.getFn(ctx, companyID)
}

func (f *fakeCompanies) Search(ctx context.Context, query string) ([]company.SearchResult, error) {
	if f.searchFn == nil {
		return nil, errors.New("unexpected Search")
	}
	return f.searchFn(ctx, query)
}

func (f *fakeCompanies) UpsertRegulatory(ctx context.Context, in company.RegulatoryInput) error {
	if f.regFn == nil {
		return errors.New("unexpected UpsertRegulatory")
	}
	return f.regFn(ctx, in)
}

func (f *fakeCompanies) UpsertIndustrySize(ctx context.Context, in company.IndustrySizeInput) error {
	if f.industryFn == nil {
		return errors.New("unexpected UpsertIndustrySize")
	}
	return f.industryFn(ctx, in)
}

func (f *fakeCompanies) ReplaceTaxRegistrations(ctx context.Context, in company.TaxRegistrationsInput) (int, error) {
	if f.taxFn == nil {
		return 0, errors.New("unexpected ReplaceTaxRegistrations")
	}
	return f.taxFn(ctx, in)
}

func (f *fakeCompanies) ReplaceManufacturing(ctx context.Context, in company.ManufacturingInput) (int, error) {
	if f.mfgFn == nil {
		return 0, errors.New("unexpected ReplaceManufacturing")
	}
	return f.mfgFn(ctx, in)
}

type fakeEngagements struct {
	createFn  func(ctx context.Context, actorID string, in engagement.CreateInput) (string, error)
	saveFn    func(ctx context.Context, in engagement.ContextInput) (*engagement.ContextVersion, error)
	currentFn func(ctx context.Context, engagementID string) (*engagement.ContextVersion, error)
}

func (f *fakeEngagements) Create(ctx context.Context, actorID string, in engagement.CreateInput) (string, error) {
	if f.createFn == nil {
		return "", errors.New("unexpected Create")
	}
	return f.createFn(ctx, actorID, in)
}

func (f *fakeEngagements) SaveContext(ctx context.Context, in engagement.ContextInput) (*engagement.ContextVersion, error) {
	if f.saveFn == nil {
		return nil, errors.New("unexpected SaveContext")
	}
	return f.saveFn(ctx, in)
}

func (f *fakeEngagements) CurrentContext(ctx context.Context, engagementID string) (*engagement.ContextVersion, error) {
	if f.currentFn == nil {
		return nil, errors.New("unexpected CurrentContext")
	}
	return f.currentFn(ctx, engagementID)
}

// fakeMaster returns one fixed row per list; err fails every call.
type fakeMaster struct {
	err          error
	lastSectorID string
	lastCodeType string
}

func (f *fakeMaster) EntityTypes(context.Context) ([]master.Option, error) {
	return []master.Option{{ID: "01", Name: "Public Limited Company"}}, f.err
}

func (f *fakeMaster) Groups(context.Context) ([]master.Option, error) {
	return []master.Option{}, f.err
}

func (f *fakeMaster) Industries(context.Context) ([]master.Option, error) {
	return []master.Option{{ID: "01", Name: "Manufacturing"}}, f.err
}

func (f *fakeMaster) SubIndustries(_ context.Context, sectorID string) ([]master.SubIndustryOption, error) {
	f.lastSectorID = sectorID
	return []master.SubIndustryOption{{ID: "01", SectorID: sectorID, Name: "Automotive Components"}}, f.err
}

func (f *fakeMaster) IndustryCodes(_ context.Context, codeType string) ([]master.IndustryCodeOption, error) {
	f.lastCodeType = codeType
	return []master.IndustryCodeOption{{ID: "04", CodeType: codeType}}, f.err
}

func (f *fakeMaster) NatureOfOperations(context.Context) ([]master.Option, error) {
	return []master.Option{{ID: "02", Name: "Trading"}}, f.err
}

func (f *fakeMaster) BusinessModels(context.Context) ([]master.Option, error) {
	return []master.Option{{ID: "01", Name: "B2B"}}, f.err
}

func (f *fakeMaster) AnnualTurnovers(context.Context) ([]master.BandOption, error) {
	return []master.BandOption{{ID: "01", Label: "Up to INR 50 Cr"}}, f.err
}

func (f *fakeMaster) EmployeeBands(context.Context) ([]master.BandOption, error) {
	return []master.BandOption{{ID: "04", Label: "1000+"}}, f.err
}

func (f *fakeMaster) TransactionIndicators(context.Context) ([]master.IndicatorOption, error) {
	return []master.IndicatorOption{{ID: "01", Type: "Revenue", Label: "Domestic sales"}}, f.err
}

func (f *fakeMaster) Countries(context.Context) ([]master.CountryOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []master.CountryOption{{ID: "IN", Name: "India", Code: "IND", CurrencyCode: "INR", CurrencyName: "Indian Rupee"}}, nil
}

type stubVerifier struct{}

func (stubVerifier) VerifyUserToken(_ context.Context, token string) (*auth.UserIdentity, error) {
	if token == "user-jwt" {
		return &auth.UserIdentity{UserID: "u-1", TenantID: "T1", Email: "a@example.com"}, nil
	}
	return nil, fmt.Errorf("%w: user token invalid: 401", auth.ErrUnauthenticated)
}

func (stubVerifier) VerifyServiceToken(_ context.Context, token string) (*auth.ServiceIdentity, error) {
	if token == "svc-jwt" {
		return &auth.ServiceIdentity{ServiceID: "report-service", Scopes: []string{"audit.read"}}, nil
	}
	return nil, fmt.Errorf("%w: invalid service token", auth.ErrUnauthenticated)
}

type stubPolicy struct {
	mu        sync.Mutex
	allowed   bool
	decisions []rbac.Decision
}

func (p *stubPolicy) Check(_ context.Context, d rbac.Decision) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions = append(p.decisions, d)
	return p.allowed, nil
}

// Harness

type testServer struct {
	handler     http.Handler
	companies   *fakeCompanies
	engagements *fakeEngagements
	master      *fakeMaster
	policy      *stubPolicy
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := quietLogger()

	validator, err := validation.NewSchemaValidator(16)
	require.NoError(t, err)

	ts := &testServer{
		companies:   &fakeCompanies{},
		engagements: &fakeEngagements{},
		master:      &fakeMaster{},
		policy:      &stubPolicy{allowed: true},
	}
	authz, err := auditmiddleware.NewAuthzMiddleware(auditmiddleware.AuthzDependencies{
		Verifier: stubVerifier{},
		Policy:   ts.policy,
		Logger:   logger,
	})
	require.NoError(t, err)

	router, err := NewRouter(RouterOptions{
		Companies:   ts.companies,
		Engagements: ts.engagements,
		Master:      ts.master,
		Validator:   validator,
		AuthnDeps:   auditmiddleware.AuthnDependencies{Verifier: stubVerifier{}, Logger: logger},
		Authorizer:  authz,
		Logger:      logger,
	})
	require.NoError(t, err)
	ts.handler = router
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

var asUser = map[string]string{"Authorization": "Bearer user-jwt"}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

const validCompany = `{"legal_name":"Acme Industries Ltd","entity_type_id":"01","country_id":"IN","registered_address":"Pune","cin":"U1"}`

// Tests

func TestNewRouter_RequiresDependencies(t *testing.T) {
	_, err := NewRouter(RouterOptions{})
	assert.Error(t, err)

	_, err = NewRouter(RouterOptions{
		Companies: &fakeCompanies{}, Engagements: &fakeEngagements{}, Master: &fakeMaster{},
		AuthnDeps: auditmiddleware.AuthnDependencies{Verifier: stubVerifier{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorizer")
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/health"} {
		rr := ts.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, "missing authentication", decodeBody(t, rr)["error"], path)
	}

	rr := ts.do(http.MethodGet, "/", "", map[string]string{"X-Service-Token": "svc-jwt"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"status": "ok", "service": "internal-audit-be"}, decodeBody(t, rr))

	rr = ts.do(http.MethodGet, "/health", "", asUser)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodGet, "/health", "", map[string]string{"X-Service-Token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "missing authentication", decodeBody(t, rr)["error"])

	rr = ts.do(http.MethodGet, "/api/me", "", map[string]string{
		"Authorization":   "Bearer user-jwt",
		"X-Service-Token": "svc-jwt",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, map[string]any{"user_id": "u-1", "tenant_id": "T1", "email": "a@example.com"}, body["user"])
	assert.Equal(t, map[string]any{"service_id": "report-service", "scopes": []any{"audit.read"}}, body["service"])

	rr = ts.do(http.MethodGet, "/api/me", "", map[string]string{"X-Service-Token": "svc-jwt"})
	require.Equal(t, http.StatusOK, rr.Code)
	body = decodeBody(t, rr)
	assert.NotContains(t, body, "user")
}

func TestCreateCompany(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		ts := newTestServer(t)
		var gotActor string
		var gotInput company.CreateInput
		ts.companies.createFn = func(_ context.Context, actorID string, in company.CreateInput) (string, error) {
			gotActor, gotInput = actorID, in
			return "c-1", nil
		}

		rr := ts.do(http.MethodPost, "/api/company-create", validCompany, asUser)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, map[string]any{"message": "Company created", "company_id": "c-1"}, decodeBody(t, rr))
		assert.Equal(t, "u-1", gotActor)
		assert.Equal(t, "Acme Industries Ltd", gotInput.LegalName)
		require.NotNil(t, gotInput.CIN)
		assert.Equal(t, "U1", *gotInput.CIN)

		require.Len(t, ts.policy.decisions, 1)
		assert.Equal(t, ActivityCompanyCreate, ts.policy.decisions[0].Activity)
		assert.Equal(t, "T1", ts.policy.decisions[0].ProjectID)
	})

	t.Run("denied", func(t *testing.T) {
		ts := newTestServer(t)
		ts.policy.allowed = false

		rr := ts.do(http.MethodPost, "/api/company-create", validCompany, asUser)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "forbidden: company.create", decodeBody(t, rr)["error"])
	})

	t.Run("service token only", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodPost, "/api/company-create", validCompany, map[string]string{"X-Service-Token": "svc-jwt"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "missing bearer token", decodeBody(t, rr)["error"])
		assert.Empty(t, ts.policy.decisions)
	})

	t.Run("invalid payload", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodPost, "/api/company-create", `{"entity_type_id":"01"}`, asUser)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["error"], "invalid payload")
	})

	t.Run("empty body", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodPost, "/api/company-create", "", asUser)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		ts := newTestServer(t)
		ts.companies.createFn = func(context.Context, string, company.CreateInput) (string, error) {
			return "", fmt.Errorf("create company: company with same legal name and CIN %w", repository.ErrConflict)
		}

		rr := ts.do(http.MethodPost, "/api/company-create", validCompany, asUser)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Company with same legal name and CIN already exists", decodeBody(t, rr)["error"])
	})

	t.Run("unexpected failure hides detail", func(t *testing.T) {
		ts := newTestServer(t)
		ts.companies.createFn = func(context.Context, string, company.CreateInput) (string, error) {
			return "", errors.New("pq: connection refused")
		}

		rr := ts.do(http.MethodPost, "/api/company-create", validCompany, asUser)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "internal server error", decodeBody(t, rr)["error"])
	})
}

func TestCreateCompany_RequiresUserIdentity(t *testing.T) {
	h := &handlers{companies: &fakeCompanies{}, logger: quietLogger()}

	req := httptest.NewRequest(http.MethodPost, "/api/company-create", strings.NewReader(validCompany))
	rr := httptest.NewRecorder()
	h.createCompany(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "User authentication required", decodeBody(t, rr)["error"])
}

func TestGetCompany(t *testing.T) {
	ts := newTestServer(t)
	ts.companies.getFn = func(_ context.Context, id string) (*company.Detail, error) {
		if id == "c-1" {
			return &company.Detail{CompanyID: "c-1", LegalName: "Acme", Status: "Draft"}, nil
		}
		return nil, fmt.Errorf("company '%s' %w", id, repository.ErrNotFound)
	}

	rr := ts.do(http.MethodGet, "/api/company-master?company_id=c-1", "", asUser)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Acme", body["legal_name"])
	assert.Equal(t, "Draft", body["status"])
	assert.Nil(t, body["display_name"])

	rr = ts.do(http.MethodGet, "/api/company-master?company_id=nope", "", asUser)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Company not found", decodeBody(t, rr)["error"])

	rr = ts.do(http.MethodGet, "/api/company-master", "", asUser)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchCompanies(t *testing.T) {
	ts := newTestServer(t)
	var gotQuery string
	ts.companies.searchFn = func(_ context.Context, q string) ([]company.SearchResult, error) {
		gotQuery = q
		return []company.SearchResult{}, nil
	}

	rr := ts.do(http.MethodGet, "/api/company-search?q=acme", "", map[string]string{"X-Service-Token": "svc-jwt"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "acme", gotQuery)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCompanyProfileWrites(t *testing.T) {
	ts := newTestServer(t)
	ts.companies.regFn = func(_ context.Context, in company.RegulatoryInput) error {
		if in.CompanyID == "missing" {
			return fmt.Errorf("company 'missing' %w", repository.ErrNotFound)
		}
		return nil
	}
	ts.companies.industryFn = func(context.Context, company.IndustrySizeInput) error { return nil }
	ts.companies.taxFn = func(_ context.Context, in company.TaxRegistrationsInput) (int, error) { return len(in.Items), nil }
	ts.companies.mfgFn = func(_ context.Context, in company.ManufacturingInput) (int, error) { return len(in.Items), nil }

	rr := ts.do(http.MethodPost, "/api/regulatory-upsert", `{"company_id":"c-1","pan":"P","listed_status":"Listed"}`, asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]any{"message": "Regulatory data upserted", "company_id": "c-1"}, decodeBody(t, rr))

	rr = ts.do(http.MethodPost, "/api/regulatory-upsert", `{"company_id":"c-1","pan":"P","listed_status":"Maybe"}`, asUser)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "listed_status")

	rr = ts.do(http.MethodPost, "/api/regulatory-upsert", `{"company_id":"missing","pan":"P","listed_status":"Unlisted"}`, asUser)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodPost, "/api/industry-size-upsert",
		`{"company_id":"c-1","industry_sector_id":"01","sub_industry_id":"01","industry_code_id":"01","revenue_indicator_id":"01","spend_indicator_id":"03"}`, asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Industry/size profile upserted", decodeBody(t, rr)["message"])

	rr = ts.do(http.MethodPost, "/api/tax-registration-replace",
		`{"company_id":"c-1","items":[{"tax_type":"GST","tax_id":"27A"},{"tax_type":"TAN","tax_id":"PNE"}]}`, asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]any{"message": "Tax registrations replaced", "company_id": "c-1", "count": float64(2)}, decodeBody(t, rr))

	rr = ts.do(http.MethodPost, "/api/manufacturing-replace", `{"company_id":"c-1","items":[]}`, asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]any{"message": "Manufacturing list replaced", "company_id": "c-1", "count": float64(0)}, decodeBody(t, rr))

	activities := make([]string, 0, len(ts.policy.decisions))
	for _, d := range ts.policy.decisions {
		activities = append(activities, d.Activity)
	}
	assert.Contains(t, activities, ActivityRegulatoryUpsert)
	assert.Contains(t, activities, ActivityIndustrySizeUpsert)
	assert.Contains(t, activities, ActivityTaxRegistrationReplace)
	assert.Contains(t, activities, ActivityManufacturingReplace)
}

func TestEngagementEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.engagements.createFn = func(_ context.Context, actorID string, in engagement.CreateInput) (string, error) {
		if in.EngagementCode == "DUP" {
			return "", fmt.Errorf("engagement with code 'DUP' %w", repository.ErrConflict)
		}
		assert.Equal(t, "u-1", actorID)
		return "e-1", nil
	}
	ts.engagements.saveFn = func(_ context.Context, in engagement.ContextInput) (*engagement.ContextVersion, error) {
		if in.EngagementID == "missing" {
			return nil, fmt.Errorf("engagement 'missing' %w", repository.ErrNotFound)
		}
		assert.Equal(t, "treasury", in.Context["scope"])
		return &engagement.ContextVersion{EngagementContextID: "v-1", EngagementID: in.EngagementID}, nil
	}
	ts.engagements.currentFn = func(_ context.Context, id string) (*engagement.ContextVersion, error) {
		if id == "e-1" {
			return &engagement.ContextVersion{EngagementContextID: "v-1", EngagementID: "e-1"}, nil
		}
		return nil, fmt.Errorf("context for engagement '%s' %w", id, repository.ErrNotFound)
	}

	create := `{"company_id":"c-1","engagement_name":"FY25","engagement_code":"%s","audit_type":"IFC","reporting_currency":["INR"],"audit_fy":"2024-25"}`

	rr := ts.do(http.MethodPost, "/api/engagement-create", fmt.Sprintf(create, "ENG-1"), asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]any{"message": "Engagement created", "engagement_id": "e-1"}, decodeBody(t, rr))

	rr = ts.do(http.MethodPost, "/api/engagement-create", fmt.Sprintf(create, "DUP"), asUser)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Engagement code already exists", decodeBody(t, rr)["error"])

	rr = ts.do(http.MethodPost, "/api/engagement-context", `{"engagement_id":"e-1","context":{"scope":"treasury"}}`, asUser)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]any{
		"message":               "Engagement context saved",
		"engagement_id":         "e-1",
		"engagement_context_id": "v-1",
	}, decodeBody(t, rr))

	rr = ts.do(http.MethodPost, "/api/engagement-context", `{"engagement_id":"missing","context":{"scope":"treasury"}}`, asUser)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Engagement not found", decodeBody(t, rr)["error"])

	rr = ts.do(http.MethodGet, "/api/engagement-context?engagement_id=e-1", "", asUser)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v-1", decodeBody(t, rr)["engagement_context_id"])

	rr = ts.do(http.MethodGet, "/api/engagement-context?engagement_id=e-9", "", asUser)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodGet, "/api/engagement-context", "", asUser)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMasterEndpoints(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/api/entity-types", "/api/groups", "/api/industries", "/api/sub-industries",
		"/api/industry-codes", "/api/nature-operations", "/api/business-models",
		"/api/annual-turnovers", "/api/employees", "/api/transaction-indicators", "/api/countries",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr := ts.do(http.MethodGet, path, "", asUser)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}

	rr := ts.do(http.MethodGet, "/api/countries", "", asUser)
	assert.JSONEq(t, `[{"id":"IN","name":"India","code":"IND","currency_code":"INR","currency_name":"Indian Rupee"}]`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/sub-industries?sector_id=02", "", asUser)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "02", ts.master.lastSectorID)
	assert.JSONEq(t, `[{"id":"01","sector_id":"02","name":"Automotive Components"}]`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/industry-codes?code_type=SIC", "", asUser)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "SIC", ts.master.lastCodeType)

	rr = ts.do(http.MethodGet, "/api/countries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	ts.master.err = errors.New("db down")
	rr = ts.do(http.MethodGet, "/api/countries", "", asUser)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
