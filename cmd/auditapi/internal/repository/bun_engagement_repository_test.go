package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

func newEngagement(code string) *models.Engagement {
	return &models.Engagement{
		UserID:            "u-1",
		CompanyID:         "c-1",
		EngagementName:    "FY25 internal audit",
		EngagementCode:    code,
		AuditType:         models.AuditTypeIFC,
		ReportingCurrency: models.StringList{"INR", "USD"},
		AuditFY:           "2024-25",
	}
}

func TestBunEngagementRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunEngagementRepository(db)
	ctx := context.Background()

	t.Run("create valid engagement", func(t *testing.T) {
		e := newEngagement("ENG-001")
		require.NoError(t, repo.Create(ctx, e))

		got, err := repo.GetByID(ctx, e.EngagementID)
		require.NoError(t, err)
		assert.Equal(t, "ENG-001", got.EngagementCode)
		assert.Equal(t, models.StringList{"INR", "USD"}, got.ReportingCurrency)
		assert.Equal(t, models.EngagementStatusDraft, got.Status)
		assert.True(t, got.IsActive)
	})

	t.Run("duplicate code", func(t *testing.T) {
		err := repo.Create(ctx, newEngagement("ENG-001"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("invalid audit type", func(t *testing.T) {
		e := newEngagement("ENG-002")
		e.AuditType = "Statutory"
		err := repo.Create(ctx, e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit_type")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestBunEngagementRepository_ContextVersions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunEngagementRepository(db)
	ctx := context.Background()

	e := newEngagement("ENG-100")
	require.NoError(t, repo.Create(ctx, e))

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	_, err := repo.CurrentContext(ctx, e.EngagementID, t0)
	assert.True(t, errors.Is(err, ErrNotFound))

	v1, err := repo.SaveContext(ctx, e.EngagementID, models.Document{"scope": "procurement"}, t0)
	require.NoError(t, err)
	assert.True(t, v1.IsActive)
	assert.True(t, v1.EndDate.Equal(models.OpenEnded))

	v2, err := repo.SaveContext(ctx, e.EngagementID, models.Document{"scope": "treasury", "tenant_id": "42"}, t1)
	require.NoError(t, err)

	current, err := repo.CurrentContext(ctx, e.EngagementID, t1.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, v2.EngagementContextID, current.EngagementContextID)
	assert.Equal(t, "treasury", current.ContextJSON["scope"])

	var versions []models.EngagementContext
	require.NoError(t, db.NewSelect().Model(&versions).
		Where("engagement_id = ?", e.EngagementID).
		OrderExpr("st_dt ASC").
		Scan(ctx))
	require.Len(t, versions, 2)

	closed := versions[0]
	assert.Equal(t, v1.EngagementContextID, closed.EngagementContextID)
	assert.False(t, closed.IsActive)
	assert.True(t, closed.EndDate.Equal(t1), "closed at %v", closed.EndDate)

	open := versions[1]
	assert.True(t, open.IsActive)
	assert.True(t, open.EndDate.Equal(models.OpenEnded))

	active, err := db.NewSelect().Model((*models.EngagementContext)(nil)).
		Where("engagement_id = ?", e.EngagementID).
		Where("is_active = ?", true).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestBunEngagementRepository_SaveContextUnknownEngagement(t *testing.T) {
	repo := NewBunEngagementRepository(setupTestDB(t))

	_, err := repo.SaveContext(context.Background(), "missing", models.Document{}, time.Now())
	assert.True(t, errors.Is(err, ErrNotFound))
}
