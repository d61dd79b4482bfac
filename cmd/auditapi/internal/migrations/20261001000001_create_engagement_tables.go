package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20261001000001, down_20261001000001)
}

// up_20261001000001 creates engagement and versioned engagement_context tables
func up_20261001000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating engagement table...")
	_, err := db.NewCreateTable().
		Model((*models.Engagement)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create engagement table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_engagement_company ON engagement(company_id)`); err != nil {
		return fmt.Errorf("failed to create engagement company index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating engagement_context table...")
	_, err = db.NewCreateTable().
		Model((*models.EngagementContext)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create engagement_context table: %w", err)
	}

	// Lookups always filter on the open version of one engagement.
	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_engagement_context_current
		ON engagement_context(engagement_id, is_active, e_dt)
	`)
	if err != nil {
		return fmt.Errorf("failed to create engagement_context index: %w", err)
	}

	// At most one open version per engagement.
	_, err = db.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_engagement_context_open
		ON engagement_context(engagement_id) WHERE is_active
	`)
	if err != nil {
		return fmt.Errorf("failed to create engagement_context open-version index: %w", err)
	}

	if err := convertToJSONB(ctx, db,
		jsonColumn{table: "engagement_context", column: "context_json"},
		jsonColumn{table: "engagement", column: "reporting_currency"},
	); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

// down_20261001000001 drops engagement tables
func down_20261001000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping engagement tables...")
	for _, model := range []any{(*models.EngagementContext)(nil), (*models.Engagement)(nil)} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop engagement tables: %w", err)
		}
	}
	fmt.Println(" OK")
	return nil
}
