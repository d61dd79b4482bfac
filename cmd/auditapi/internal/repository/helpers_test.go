package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/bunx"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/migrations"
)

// setupTestDB opens a private in-memory SQLite database with the full schema
// and seed data applied.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func strPtr(s string) *string { return &s }
