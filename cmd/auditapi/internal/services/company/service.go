package company

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const tracerName = "auditapi/services/company"

// CreateInput is the payload of a company create request.
type CreateInput struct {
	LegalName            string  `json:"legal_name"`
	DisplayName          *string `json:"display_name"`
	EntityTypeID         string  `json:"entity_type_id"`
	CountryID            string  `json:"country_id"`
	RegisteredAddress    string  `json:"registered_address"`
	OperationalHQAddress *string `json:"operational_hq_address"`
	IsPartOfGroup        bool    `json:"is_part_of_group"`
	ParentGroupID        *string `json:"parent_group_id"`
	// CIN is only used to reject a duplicate of an existing company; it is
	// stored through the regulatory record.
	CIN *string `json:"cin"`
}

// RegulatoryInput is the payload of a regulatory upsert.
type RegulatoryInput struct {
	CompanyID    string   `json:"company_id"`
	CIN          *string  `json:"cin"`
	PAN          string   `json:"pan"`
	LEI          *string  `json:"lei"`
	ListedStatus string   `json:"listed_status"`
	ExchangeList []string `json:"exchange_list"`
	TickerSymbol *string  `json:"ticker_symbol"`
}

// IndustrySizeInput is the payload of an industry and size profile upsert.
type IndustrySizeInput struct {
	CompanyID                string  `json:"company_id"`
	IndustrySectorID         string  `json:"industry_sector_id"`
	SubIndustryID            string  `json:"sub_industry_id"`
	IndustryCodeID           string  `json:"industry_code_id"`
	AnnualTurnoverID         *string `json:"annual_turnover_id"`
	EmployeeBandID           *string `json:"employee_band_id"`
	ManufacturingPlantsCount *int    `json:"manufacturing_plants_count"`
	SEZEOUPresence           *bool   `json:"sez_eou_presence"`
	RevenueIndicatorID       string  `json:"revenue_indicator_id"`
	SpendIndicatorID         string  `json:"spend_indicator_id"`
}

// TaxRegistrationItem is one entry of a tax registration replace.
type TaxRegistrationItem struct {
	TaxType   string  `json:"tax_type"`
	TaxID     string  `json:"tax_id"`
	CountryID *string `json:"country_id"`
}

// TaxRegistrationsInput replaces every tax registration of a company.
type TaxRegistrationsInput struct {
	CompanyID string                `json:"company_id"`
	Items     []TaxRegistrationItem `json:"items"`
}

// ManufacturingItem is one plant of a manufacturing list replace.
type ManufacturingItem struct {
	PlantName *string `json:"plant_name"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	CountryID *string `json:"country_id"`
}

// ManufacturingInput replaces every manufacturing site of a company.
type ManufacturingInput struct {
	CompanyID string              `json:"company_id"`
	Items     []ManufacturingItem `json:"items"`
}

// SearchResult is one row of a company search.
type SearchResult struct {
	CompanyID string  `json:"company_id"`
	LegalName string  `json:"legal_name"`
	CountryID string  `json:"country_id"`
	CIN       *string `json:"cin"`
	Sector    *string `json:"sector"`
}

// Detail is the company master record as returned to clients.
type Detail struct {
	CompanyID            string  `json:"company_id"`
	LegalName            string  `json:"legal_name"`
	DisplayName          *string `json:"display_name"`
	EntityTypeID         string  `json:"entity_type_id"`
	CountryID            string  `json:"country_id"`
	RegisteredAddress    string  `json:"registered_address"`
	OperationalHQAddress *string `json:"operational_hq_address"`
	IsPartOfGroup        bool    `json:"is_part_of_group"`
	ParentGroupID        *string `json:"parent_group_id"`
	Status               string  `json:"status"`
}

// Service orchestrates company master persistence for the HTTP handlers.
type Service struct {
	repo   repository.CompanyRepository
	logger logrus.FieldLogger
}

// NewService constructs a new Service instance.
func NewService(repo repository.CompanyRepository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, logger: logger.WithField("component", "company")}
}

// Create stores a new draft company on behalf of actorID.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.Create",
		attribute.String(telemetry.AttrPrincipalID, actorID),
	)
	defer span.End()

	record := &models.Company{
		LegalName:            strings.TrimSpace(in.LegalName),
		DisplayName:          in.DisplayName,
		EntityTypeID:         in.EntityTypeID,
		CountryID:            in.CountryID,
		RegisteredAddress:    in.RegisteredAddress,
		OperationalHQAddress: in.OperationalHQAddress,
		IsPartOfGroup:        in.IsPartOfGroup,
		ParentGroupID:        in.ParentGroupID,
		CreatedBy:            actorID,
	}

	if err := s.repo.Create(ctx, record, in.CIN); err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("create company: %w", err)
	}

	span.SetAttributes(attribute.String(telemetry.AttrCompanyID, record.CompanyID))
	s.logger.WithFields(logrus.Fields{
		"company_id": record.CompanyID,
		"created_by": actorID,
	}).Info("company created")
	return record.CompanyID, nil
}

// Get returns the company master record.
func (s *Service) Get(ctx context.Context, companyID string) (*Detail, error) {
	record, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		CompanyID:            record.CompanyID,
		LegalName:            record.LegalName,
		DisplayName:          record.DisplayName,
		EntityTypeID:         record.EntityTypeID,
		CountryID:            record.CountryID,
		RegisteredAddress:    record.RegisteredAddress,
		OperationalHQAddress: record.OperationalHQAddress,
		IsPartOfGroup:        record.IsPartOfGroup,
		ParentGroupID:        record.ParentGroupID,
		Status:               record.Status,
	}, nil
}

// Search matches query against company names. An empty query lists all.
func (s *Service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	rows, err := s.repo.Search(ctx, query, repository.DefaultSearchLimit)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResult{
			CompanyID: row.CompanyID,
			LegalName: row.LegalName,
			CountryID: row.CountryID,
			CIN:       row.CIN,
			Sector:    row.IndustrySectorID,
		})
	}
	return results, nil
}

// UpsertRegulatory creates or replaces the regulatory record of a company.
func (s *Service) UpsertRegulatory(ctx context.Context, in RegulatoryInput) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.UpsertRegulatory",
		attribute.String(telemetry.AttrCompanyID, in.CompanyID),
	)
	defer span.End()

	record := &models.Regulatory{
		CompanyID:    in.CompanyID,
		CIN:          in.CIN,
		PAN:          in.PAN,
		LEI:          in.LEI,
		ListedStatus: in.ListedStatus,
		ExchangeList: models.StringList(in.ExchangeList),
		TickerSymbol: in.TickerSymbol,
	}
	if err := s.repo.UpsertRegulatory(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("upsert regulatory data: %w", err)
	}
	return nil
}

// UpsertIndustrySize creates or replaces the industry and size profile.
func (s *Service) UpsertIndustrySize(ctx context.Context, in IndustrySizeInput) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.UpsertIndustrySize",
		attribute.String(telemetry.AttrCompanyID, in.CompanyID),
	)
	defer span.End()

	record := &models.IndustrySize{
		CompanyID:                in.CompanyID,
		IndustrySectorID:         in.IndustrySectorID,
		SubIndustryID:            in.SubIndustryID,
		IndustryCodeID:           in.IndustryCodeID,
		AnnualTurnoverID:         in.AnnualTurnoverID,
		EmployeeBandID:           in.EmployeeBandID,
		ManufacturingPlantsCount: in.ManufacturingPlantsCount,
		SEZEOUPresence:           in.SEZEOUPresence,
		RevenueIndicatorID:       in.RevenueIndicatorID,
		SpendIndicatorID:         in.SpendIndicatorID,
	}
	if err := s.repo.UpsertIndustrySize(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("upsert industry profile: %w", err)
	}
	return nil
}

// ReplaceTaxRegistrations swaps the tax registrations of a company and
// returns how many were stored.
func (s *Service) ReplaceTaxRegistrations(ctx context.Context, in TaxRegistrationsInput) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.ReplaceTaxRegistrations",
		attribute.String(telemetry.AttrCompanyID, in.CompanyID),
		attribute.Int("items", len(in.Items)),
	)
	defer span.End()

	items := make([]models.TaxRegistration, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, models.TaxRegistration{
			TaxType:   item.TaxType,
			TaxID:     item.TaxID,
			CountryID: item.CountryID,
		})
	}
	n, err := s.repo.ReplaceTaxRegistrations(ctx, in.CompanyID, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("replace tax registrations: %w", err)
	}
	return n, nil
}

// ReplaceManufacturing swaps the manufacturing sites of a company and
// returns how many were stored.
func (s *Service) ReplaceManufacturing(ctx context.Context, in ManufacturingInput) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "company.ReplaceManufacturing",
		attribute.String(telemetry.AttrCompanyID, in.CompanyID),
		attribute.Int("items", len(in.Items)),
	)
	defer span.End()

	items := make([]models.ManufacturingSite, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, models.ManufacturingSite{
			PlantName: item.PlantName,
			City:      item.City,
			State:     item.State,
			CountryID: item.CountryID,
		})
	}
	n, err := s.repo.ReplaceManufacturing(ctx, in.CompanyID, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("replace manufacturing sites: %w", err)
	}
	return n, nil
}
