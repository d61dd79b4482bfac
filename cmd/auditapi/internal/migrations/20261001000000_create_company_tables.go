package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20261001000000, down_20261001000000)
}

var companyTables = []struct {
	name  string
	model any
}{
	{"company_master", (*models.Company)(nil)},
	{"regulatory_master", (*models.Regulatory)(nil)},
	{"company_tax_registration", (*models.TaxRegistration)(nil)},
	{"company_industry_size_master", (*models.IndustrySize)(nil)},
	{"company_manufacturing_list", (*models.ManufacturingSite)(nil)},
}

var companyIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_company_legal_name ON company_master(legal_name)`,
	`CREATE INDEX IF NOT EXISTS idx_company_country ON company_master(country_id)`,
	`CREATE INDEX IF NOT EXISTS idx_company_entity_type ON company_master(entity_type_id)`,
	`CREATE INDEX IF NOT EXISTS idx_company_parent_group ON company_master(parent_group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_regulatory_cin ON regulatory_master(cin)`,
	`CREATE INDEX IF NOT EXISTS idx_tax_registration_company ON company_tax_registration(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tax_registration_tax_id ON company_tax_registration(tax_id)`,
	`CREATE INDEX IF NOT EXISTS idx_industry_size_sector ON company_industry_size_master(industry_sector_id)`,
	`CREATE INDEX IF NOT EXISTS idx_industry_size_sub_sector ON company_industry_size_master(sub_industry_id)`,
	`CREATE INDEX IF NOT EXISTS idx_manufacturing_company ON company_manufacturing_list(company_id)`,
}

// up_20261001000000 creates the company profile tables
func up_20261001000000(ctx context.Context, db *bun.DB) error {
	for _, tbl := range companyTables {
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

	fmt.Print(" [up] creating company indexes...")
	for _, stmt := range companyIndexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create company index: %w", err)
		}
	}
	if err := convertToJSONB(ctx, db, jsonColumn{table: "regulatory_master", column: "exchange_list"}); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

// down_20261001000000 drops the company profile tables
func down_20261001000000(ctx context.Context, db *bun.DB) error {
	for i := len(companyTables) - 1; i >= 0; i-- {
		tbl := companyTables[i]
		fmt.Printf(" [down] dropping %s table...", tbl.name)
		_, err := db.NewDropTable().
			Model(tbl.model).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}
