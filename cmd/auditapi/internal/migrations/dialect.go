package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// jsonColumn names a column that bun creates as VARCHAR/TEXT for a JSON field.
type jsonColumn struct {
	table  string
	column string
}

// IsPostgreSQL checks if the database is PostgreSQL
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}

// convertToJSONB retypes the given columns as JSONB on PostgreSQL. SQLite
// keeps them as text.
func convertToJSONB(ctx context.Context, db *bun.DB, cols ...jsonColumn) error {
	if !IsPostgreSQL(db) {
		return nil
	}
	for _, c := range cols {
		stmt := fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN %s TYPE JSONB USING %s::jsonb`, c.table, c.column, c.column)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("convert %s.%s to jsonb: %w", c.table, c.column, err)
		}
	}
	return nil
}
