package repository

import (
	"context"
	"errors"
	"time"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

var (
	// ErrNotFound is wrapped by lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a write would duplicate an existing record.
	ErrConflict = errors.New("already exists")
	// ErrInvalid is wrapped when a record fails validation before a write.
	ErrInvalid = errors.New("validation failed")
)

// CompanyRepository exposes persistence operations for a company and its
// regulatory, industry, tax and manufacturing profile.
type CompanyRepository interface {
	// Create inserts a company. When cin is set, a company with the same
	// legal name (case-insensitive) and CIN is a conflict.
	Create(ctx context.Context, company *models.Company, cin *string) error
	GetByID(ctx context.Context, companyID string) (*models.Company, error)
	Search(ctx context.Context, query string, limit int) ([]models.CompanySearchRow, error)

	UpsertRegulatory(ctx context.Context, reg *models.Regulatory) error
	UpsertIndustrySize(ctx context.Context, profile *models.IndustrySize) error
	ReplaceTaxRegistrations(ctx context.Context, companyID string, items []models.TaxRegistration) (int, error)
	ReplaceManufacturing(ctx context.Context, companyID string, items []models.ManufacturingSite) (int, error)
}

// EngagementRepository exposes persistence operations for engagements and
// their versioned context documents.
type EngagementRepository interface {
	Create(ctx context.Context, engagement *models.Engagement) error
	GetByID(ctx context.Context, engagementID string) (*models.Engagement, error)

	// SaveContext closes the open context version of the engagement and
	// stores doc as the new open version, atomically.
	SaveContext(ctx context.Context, engagementID string, doc models.Document, now time.Time) (*models.EngagementContext, error)
	// CurrentContext returns the open context version at now.
	CurrentContext(ctx context.Context, engagementID string, now time.Time) (*models.EngagementContext, error)
}

// MasterRepository reads the reference tables.
type MasterRepository interface {
	EntityTypes(ctx context.Context) ([]models.EntityType, error)
	Groups(ctx context.Context) ([]models.Group, error)
	Industries(ctx context.Context) ([]models.Industry, error)
	SubIndustries(ctx context.Context, sectorID string) ([]models.SubIndustry, error)
	IndustryCodes(ctx context.Context, codeType string) ([]models.IndustryCode, error)
	NatureOfOperations(ctx context.Context) ([]models.NatureOfOperation, error)
	BusinessModels(ctx context.Context) ([]models.BusinessModel, error)
	AnnualTurnovers(ctx context.Context) ([]models.AnnualTurnover, error)
	EmployeeBands(ctx context.Context) ([]models.EmployeeBand, error)
	TransactionIndicators(ctx context.Context) ([]models.TransactionIndicator, error)
	// Countries returns active countries whose validity window contains now.
	Countries(ctx context.Context, now time.Time) ([]models.Country, error)
}
