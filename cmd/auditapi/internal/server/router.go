package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/auth"
	auditmiddleware "github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/middleware"
)

// Activities checked by the authorization guard.
const (
	ActivityCompanyCreate          = "company.create"
	ActivityRegulatoryUpsert       = "company.regulatory.upsert"
	ActivityIndustrySizeUpsert     = "company.industry_size.upsert"
	ActivityTaxRegistrationReplace = "company.tax_registration.replace"
	ActivityManufacturingReplace   = "company.manufacturing.replace"
	ActivityEngagementCreate       = "engagement.create"
	ActivityEngagementContext      = "engagement.context.create"
)

// RouterOptions controls the construction of the audit API router.
type RouterOptions struct {
	Companies   companyService
	Engagements engagementService
	Master      masterService
	Validator   payloadValidator

	AuthnDeps  auditmiddleware.AuthnDependencies
	Authorizer *auditmiddleware.Authorizer

	Logger        logrus.FieldLogger
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			auth.HeaderServiceToken,
			auth.HeaderUserToken,
			auth.HeaderTenantID,
		},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the audit handlers mounted under /api. Every route, the root and health
// endpoints included, passes the authentication gate; writes additionally
// pass the authorization guard.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	switch {
	case opts.Companies == nil || opts.Engagements == nil || opts.Master == nil:
		return nil, errors.New("router: company, engagement and master services are required")
	case opts.AuthnDeps.Verifier == nil:
		return nil, errors.New("router: token verifier is required")
	case opts.Authorizer == nil:
		return nil, errors.New("router: authorizer is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.AuthnDeps.Logger == nil {
		opts.AuthnDeps.Logger = logger
	}

	h := &handlers{
		companies:   opts.Companies,
		engagements: opts.Engagements,
		master:      opts.Master,
		validator:   opts.Validator,
		logger:      logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Use(auditmiddleware.Authenticate(opts.AuthnDeps))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/", handleRoot)
	r.Get("/health", healthHandler)

	guard := opts.Authorizer.Require

	r.Route("/api", func(api chi.Router) {
		api.Get("/me", handleMe)

		// Company master
		api.Get("/company-search", h.searchCompanies)
		api.Get("/company-master", h.getCompany)
		api.With(guard(ActivityCompanyCreate)).Post("/company-create", h.createCompany)
		api.With(guard(ActivityRegulatoryUpsert)).Post("/regulatory-upsert", h.upsertRegulatory)
		api.With(guard(ActivityIndustrySizeUpsert)).Post("/industry-size-upsert", h.upsertIndustrySize)
		api.With(guard(ActivityTaxRegistrationReplace)).Post("/tax-registration-replace", h.replaceTaxRegistrations)
		api.With(guard(ActivityManufacturingReplace)).Post("/manufacturing-replace", h.replaceManufacturing)

		// Engagements
		api.With(guard(ActivityEngagementCreate)).Post("/engagement-create", h.createEngagement)
		api.With(guard(ActivityEngagementContext)).Post("/engagement-context", h.saveEngagementContext)
		api.Get("/engagement-context", h.getEngagementContext)

		// Reference data
		m := opts.Master
		api.Get("/entity-types", list(h, func(r *http.Request) ([]masterOption, error) { return m.EntityTypes(r.Context()) }))
		api.Get("/groups", list(h, func(r *http.Request) ([]masterOption, error) { return m.Groups(r.Context()) }))
		api.Get("/industries", list(h, func(r *http.Request) ([]masterOption, error) { return m.Industries(r.Context()) }))
		api.Get("/sub-industries", list(h, func(r *http.Request) ([]masterSubIndustry, error) {
			return m.SubIndustries(r.Context(), r.URL.Query().Get("sector_id"))
		}))
		api.Get("/industry-codes", list(h, func(r *http.Request) ([]masterIndustryCode, error) {
			return m.IndustryCodes(r.Context(), r.URL.Query().Get("code_type"))
		}))
		api.Get("/nature-operations", list(h, func(r *http.Request) ([]masterOption, error) { return m.NatureOfOperations(r.Context()) }))
		api.Get("/business-models", list(h, func(r *http.Request) ([]masterOption, error) { return m.BusinessModels(r.Context()) }))
		api.Get("/annual-turnovers", list(h, func(r *http.Request) ([]masterBand, error) { return m.AnnualTurnovers(r.Context()) }))
		api.Get("/employees", list(h, func(r *http.Request) ([]masterBand, error) { return m.EmployeeBands(r.Context()) }))
		api.Get("/transaction-indicators", list(h, func(r *http.Request) ([]masterIndicator, error) { return m.TransactionIndicators(r.Context()) }))
		api.Get("/countries", list(h, func(r *http.Request) ([]masterCountry, error) { return m.Countries(r.Context()) }))
	})

	return r, nil
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext for service-to-service callers.
func NewH2CHandler(opts RouterOptions) (http.Handler, error) {
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}
	return h2c.NewHandler(router, &http2.Server{}), nil
}
