package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/bunx"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

// DefaultSearchLimit caps company search results when the caller sets none.
const DefaultSearchLimit = 100

// BunCompanyRepository persists companies using Bun ORM.
type BunCompanyRepository struct {
	db *bun.DB
}

var _ CompanyRepository = (*BunCompanyRepository)(nil)

// NewBunCompanyRepository constructs a repository backed by Bun.
func NewBunCompanyRepository(db *bun.DB) *BunCompanyRepository {
	return &BunCompanyRepository{db: db}
}

// Create inserts a company. The duplicate check and the insert share a
// transaction.
func (r *BunCompanyRepository) Create(ctx context.Context, company *models.Company, cin *string) error {
	if company.CompanyID == "" {
		company.CompanyID = bunx.NewID()
	}
	if company.Status == "" {
		company.Status = models.CompanyStatusDraft
	}
	company.IsActive = true
	if err := company.ValidateForCreate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if cin != nil && *cin != "" {
			dup, err := legalNameCINTaken(ctx, tx, company.LegalName, *cin, "")
			if err != nil {
				return err
			}
			if dup {
				return fmt.Errorf("company with same legal name and CIN %w", ErrConflict)
			}
		}

		if _, err := tx.NewInsert().Model(company).Exec(ctx); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("company '%s' %w", company.CompanyID, ErrConflict)
			}
			return fmt.Errorf("insert company: %w", err)
		}
		return nil
	})
}

// legalNameCINTaken reports whether another company (other than exceptID)
// already pairs legalName with cin.
func legalNameCINTaken(ctx context.Context, db bun.IDB, legalName, cin, exceptID string) (bool, error) {
	q := db.NewSelect().
		TableExpr("company_master AS c").
		Join("JOIN regulatory_master AS r ON r.company_id = c.company_id").
		Where("lower(c.legal_name) = lower(?)", legalName).
		Where("r.cin = ?", cin)
	if exceptID != "" {
		q = q.Where("r.company_id <> ?", exceptID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check duplicate company: %w", err)
	}
	return exists, nil
}

// GetByID fetches a company by its identifier.
func (r *BunCompanyRepository) GetByID(ctx context.Context, companyID string) (*models.Company, error) {
	return getCompany(ctx, r.db, companyID)
}

func getCompany(ctx context.Context, db bun.IDB, companyID string) (*models.Company, error) {
	company := new(models.Company)
	err := db.NewSelect().Model(company).Where("company_id = ?", companyID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company '%s' %w", companyID, ErrNotFound)
		}
		return nil, fmt.Errorf("query company: %w", err)
	}
	return company, nil
}

// Search matches query against legal and display names, case-insensitively.
// An empty query lists every company.
func (r *BunCompanyRepository) Search(ctx context.Context, query string, limit int) ([]models.CompanySearchRow, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := r.db.NewSelect().
		TableExpr("company_master AS c").
		ColumnExpr("c.company_id, c.legal_name, c.country_id").
		ColumnExpr("r.cin").
		ColumnExpr("isz.industry_sector_id").
		Join("LEFT JOIN regulatory_master AS r ON r.company_id = c.company_id").
		Join("LEFT JOIN company_industry_size_master AS isz ON isz.company_id = c.company_id")

	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("lower(c.legal_name) LIKE ?", like).
				WhereOr("lower(c.display_name) LIKE ?", like)
		})
	}

	rows := make([]models.CompanySearchRow, 0)
	err := q.OrderExpr("c.legal_name ASC").Limit(limit).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	return rows, nil
}

// UpsertRegulatory creates or replaces the regulatory record of a company.
func (r *BunCompanyRepository) UpsertRegulatory(ctx context.Context, reg *models.Regulatory) error {
	if err := reg.ValidateForCreate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		company, err := getCompany(ctx, tx, reg.CompanyID)
		if err != nil {
			return err
		}

		if reg.CIN != nil && *reg.CIN != "" {
			dup, err := legalNameCINTaken(ctx, tx, company.LegalName, *reg.CIN, reg.CompanyID)
			if err != nil {
				return err
			}
			if dup {
				return fmt.Errorf("company with same legal name and CIN %w", ErrConflict)
			}
		}

		now := time.Now().UTC()
		existing := new(models.Regulatory)
		err = tx.NewSelect().Model(existing).Where("company_id = ?", reg.CompanyID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			reg.RegistrationID = bunx.NewID()
			reg.CreatedAt = now
			reg.UpdatedAt = now
			reg.IsActive = true
			if _, err := tx.NewInsert().Model(reg).Exec(ctx); err != nil {
				return fmt.Errorf("insert regulatory record: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("query regulatory record: %w", err)
		}

		reg.RegistrationID = existing.RegistrationID
		reg.CountryID = existing.CountryID
		reg.CreatedAt = existing.CreatedAt
		reg.UpdatedAt = now
		reg.IsActive = existing.IsActive
		_, err = tx.NewUpdate().
			Model(reg).
			Column("cin", "pan", "lei", "listed_status", "exchange_list", "ticker_symbol", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update regulatory record: %w", err)
		}
		return nil
	})
}

// UpsertIndustrySize creates or replaces the industry and size profile of a company.
func (r *BunCompanyRepository) UpsertIndustrySize(ctx context.Context, profile *models.IndustrySize) error {
	if profile.CompanyID == "" {
		return fmt.Errorf("%w: company_id is required", ErrInvalid)
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		existing := new(models.IndustrySize)
		err := tx.NewSelect().Model(existing).Where("company_id = ?", profile.CompanyID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			profile.IndustrySizeID = bunx.NewID()
			profile.CreatedAt = now
			profile.UpdatedAt = now
			profile.IsActive = true
			if _, err := tx.NewInsert().Model(profile).Exec(ctx); err != nil {
				return fmt.Errorf("insert industry profile: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("query industry profile: %w", err)
		}

		profile.IndustrySizeID = existing.IndustrySizeID
		profile.CreatedAt = existing.CreatedAt
		profile.UpdatedAt = now
		profile.IsActive = existing.IsActive
		_, err = tx.NewUpdate().
			Model(profile).
			Column(
				"industry_sector_id", "sub_industry_id", "industry_code_id",
				"annual_turnover_id", "employee_band_id", "manufacturing_plants_count",
				"sez_eou_presence", "revenue_indicator_id", "spend_indicator_id", "updated_at",
			).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update industry profile: %w", err)
		}
		return nil
	})
}

// ReplaceTaxRegistrations swaps every tax registration of a company for items.
func (r *BunCompanyRepository) ReplaceTaxRegistrations(ctx context.Context, companyID string, items []models.TaxRegistration) (int, error) {
	now := time.Now().UTC()
	for i := range items {
		items[i].TaxRegID = bunx.NewID()
		items[i].CompanyID = companyID
		items[i].CreatedAt = now
		items[i].IsActive = true
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.TaxRegistration)(nil)).
			Where("company_id = ?", companyID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete tax registrations: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return fmt.Errorf("insert tax registrations: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ReplaceManufacturing swaps every manufacturing site of a company for items.
func (r *BunCompanyRepository) ReplaceManufacturing(ctx context.Context, companyID string, items []models.ManufacturingSite) (int, error) {
	now := time.Now().UTC()
	for i := range items {
		items[i].ManufacturingID = bunx.NewID()
		items[i].CompanyID = companyID
		items[i].CreatedAt = now
		items[i].IsActive = true
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ManufacturingSite)(nil)).
			Where("company_id = ?", companyID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete manufacturing sites: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return fmt.Errorf("insert manufacturing sites: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
