package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20261001000002, down_20261001000002)
}

var referenceTables = []struct {
	name  string
	model any
}{
	{"entity_type_master", (*models.EntityType)(nil)},
	{"group_master", (*models.Group)(nil)},
	{"industry_master", (*models.Industry)(nil)},
	{"sub_industry_master", (*models.SubIndustry)(nil)},
	{"industry_code_master", (*models.IndustryCode)(nil)},
	{"nature_of_operation_master", (*models.NatureOfOperation)(nil)},
	{"business_model_master", (*models.BusinessModel)(nil)},
	{"annual_turnover_master", (*models.AnnualTurnover)(nil)},
	{"employee_master", (*models.EmployeeBand)(nil)},
	{"transaction_indicator", (*models.TransactionIndicator)(nil)},
	{"country_master", (*models.Country)(nil)},
}

var referenceIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sub_industry_industry ON sub_industry_master(industry_id)`,
	`CREATE INDEX IF NOT EXISTS idx_industry_code_type ON industry_code_master(code_type)`,
	`CREATE INDEX IF NOT EXISTS idx_indicator_type ON transaction_indicator(indicator_type)`,
	`CREATE INDEX IF NOT EXISTS idx_country_code ON country_master(country_code)`,
	`CREATE INDEX IF NOT EXISTS idx_country_active ON country_master(active)`,
}

// up_20261001000002 creates the reference (pick list) tables
func up_20261001000002(ctx context.Context, db *bun.DB) error {
	for _, tbl := range referenceTables {
		fmt.Printf(" [up] creating %s table...", tbl.name)
		_, err := db.NewCreateTable().
			Model(tbl.model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}

	fmt.Print(" [up] creating reference indexes...")
	for _, stmt := range referenceIndexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create reference index: %w", err)
		}
	}
	fmt.Println(" OK")
	return nil
}

// down_20261001000002 drops the reference tables
func down_20261001000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping reference tables...")
	for i := len(referenceTables) - 1; i >= 0; i-- {
		tbl := referenceTables[i]
		if _, err := db.NewDropTable().Model(tbl.model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", tbl.name, err)
		}
	}
	fmt.Println(" OK")
	return nil
}
