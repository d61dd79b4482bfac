package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

// BunMasterRepository reads reference tables using Bun ORM.
type BunMasterRepository struct {
	db *bun.DB
}

var _ MasterRepository = (*BunMasterRepository)(nil)

// NewBunMasterRepository constructs a repository backed by Bun.
func NewBunMasterRepository(db *bun.DB) *BunMasterRepository {
	return &BunMasterRepository{db: db}
}

// list selects every row of T ordered by orderBy, after applying filter.
func list[T any](ctx context.Context, db bun.IDB, table, orderBy string, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]T, error) {
	rows := make([]T, 0)
	q := db.NewSelect().Model(&rows)
	if filter != nil {
		q = filter(q)
	}
	if err := q.OrderExpr(orderBy).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return rows, nil
}

func (r *BunMasterRepository) EntityTypes(ctx context.Context) ([]models.EntityType, error) {
	return list[models.EntityType](ctx, r.db, "entity types", "entity_type_id ASC", nil)
}

func (r *BunMasterRepository) Groups(ctx context.Context) ([]models.Group, error) {
	return list[models.Group](ctx, r.db, "groups", "group_id ASC", nil)
}

func (r *BunMasterRepository) Industries(ctx context.Context) ([]models.Industry, error) {
	return list[models.Industry](ctx, r.db, "industries", "industry_id ASC", nil)
}

// SubIndustries lists sub-industries, restricted to one sector when sectorID is set.
func (r *BunMasterRepository) SubIndustries(ctx context.Context, sectorID string) ([]models.SubIndustry, error) {
	return list[models.SubIndustry](ctx, r.db, "sub industries", "sub_industry_id ASC", func(q *bun.SelectQuery) *bun.SelectQuery {
		if sectorID != "" {
			q = q.Where("industry_id = ?", sectorID)
		}
		return q
	})
}

// IndustryCodes lists industry codes, restricted to one code type when set.
func (r *BunMasterRepository) IndustryCodes(ctx context.Context, codeType string) ([]models.IndustryCode, error) {
	return list[models.IndustryCode](ctx, r.db, "industry codes", "industry_code_id ASC", func(q *bun.SelectQuery) *bun.SelectQuery {
		if codeType != "" {
			q = q.Where("code_type = ?", codeType)
		}
		return q
	})
}

func (r *BunMasterRepository) NatureOfOperations(ctx context.Context) ([]models.NatureOfOperation, error) {
	return list[models.NatureOfOperation](ctx, r.db, "natures of operation", "nature_of_operation_id ASC", nil)
}

func (r *BunMasterRepository) BusinessModels(ctx context.Context) ([]models.BusinessModel, error) {
	return list[models.BusinessModel](ctx, r.db, "business models", "business_model_id ASC", nil)
}

func (r *BunMasterRepository) AnnualTurnovers(ctx context.Context) ([]models.AnnualTurnover, error) {
	return list[models.AnnualTurnover](ctx, r.db, "annual turnover bands", "annual_turnover_id ASC", nil)
}

func (r *BunMasterRepository) EmployeeBands(ctx context.Context) ([]models.EmployeeBand, error) {
	return list[models.EmployeeBand](ctx, r.db, "employee bands", "employee_band_id ASC", nil)
}

func (r *BunMasterRepository) TransactionIndicators(ctx context.Context) ([]models.TransactionIndicator, error) {
	return list[models.TransactionIndicator](ctx, r.db, "transaction indicators", "indicator_id ASC", nil)
}

// Countries lists countries flagged active whose window holds now, by name.
func (r *BunMasterRepository) Countries(ctx context.Context, now time.Time) ([]models.Country, error) {
	now = now.UTC()
	return list[models.Country](ctx, r.db, "countries", "country_name ASC", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("active = ?", true).
			Where("is_active = ?", true).
			Where("st_dt <= ?", now).
			Where("e_dt > ?", now)
	})
}
