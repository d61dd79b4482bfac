package server

import (
	"context"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/company"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/engagement"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/master"
)

// companyService defines the company operations used by the handlers.
type companyService interface {
	Create(ctx context.Context, actorID string, in company.CreateInput) (string, error)
	Get(ctx context.Context, companyID string) (*company.Detail, error)
	Search(ctx context.Context, query string) ([]company.SearchResult, error)
	UpsertRegulatory(ctx context.Context, in company.RegulatoryInput) error
	UpsertIndustrySize(ctx context.Context, in company.IndustrySizeInput) error
	ReplaceTaxRegistrations(ctx context.Context, in company.TaxRegistrationsInput) (int, error)
	ReplaceManufacturing(ctx context.Context, in company.ManufacturingInput) (int, error)
}

// engagementService defines the engagement operations used by the handlers.
type engagementService interface {
	Create(ctx context.Context, actorID string, in engagement.CreateInput) (string, error)
	SaveContext(ctx context.Context, in engagement.ContextInput) (*engagement.ContextVersion, error)
	CurrentContext(ctx context.Context, engagementID string) (*engagement.ContextVersion, error)
}

// masterService defines the reference data reads used by the handlers.
type masterService interface {
	EntityTypes(ctx context.Context) ([]master.Option, error)
	Groups(ctx context.Context) ([]master.Option, error)
	Industries(ctx context.Context) ([]master.Option, error)
	SubIndustries(ctx context.Context, sectorID string) ([]master.SubIndustryOption, error)
	IndustryCodes(ctx context.Context, codeType string) ([]master.IndustryCodeOption, error)
	NatureOfOperations(ctx context.Context) ([]master.Option, error)
	BusinessModels(ctx context.Context) ([]master.Option, error)
	AnnualTurnovers(ctx context.Context) ([]master.BandOption, error)
	EmployeeBands(ctx context.Context) ([]master.BandOption, error)
	TransactionIndicators(ctx context.Context) ([]master.IndicatorOption, error)
	Countries(ctx context.Context) ([]master.CountryOption, error)
}

type (
	masterOption       = master.Option
	masterSubIndustry  = master.SubIndustryOption
	masterIndustryCode = master.IndustryCodeOption
	masterBand         = master.BandOption
	masterIndicator    = master.IndicatorOption
	masterCountry      = master.CountryOption
)

// payloadValidator checks a raw request body against a named schema.
type payloadValidator interface {
	ValidateJSON(name string, raw []byte) error
}

var (
	_ companyService    = (*company.Service)(nil)
	_ engagementService = (*engagement.Service)(nil)
	_ masterService     = (*master.Service)(nil)
)
