package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/bunx"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

// BunEngagementRepository persists engagements and their context versions.
type BunEngagementRepository struct {
	db *bun.DB
}

var _ EngagementRepository = (*BunEngagementRepository)(nil)

// NewBunEngagementRepository constructs a repository backed by Bun.
func NewBunEngagementRepository(db *bun.DB) *BunEngagementRepository {
	return &BunEngagementRepository{db: db}
}

// Create inserts an engagement. Engagement codes are unique.
func (r *BunEngagementRepository) Create(ctx context.Context, engagement *models.Engagement) error {
	if engagement.EngagementID == "" {
		engagement.EngagementID = bunx.NewID()
	}
	if engagement.Status == "" {
		engagement.Status = models.EngagementStatusDraft
	}
	engagement.IsActive = true
	if err := engagement.ValidateForCreate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	now := time.Now().UTC()
	engagement.CreatedAt = now
	engagement.UpdatedAt = now

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*models.Engagement)(nil)).
			Where("engagement_code = ?", engagement.EngagementCode).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check engagement code: %w", err)
		}
		if taken {
			return fmt.Errorf("engagement with code '%s' %w", engagement.EngagementCode, ErrConflict)
		}

		if _, err := tx.NewInsert().Model(engagement).Exec(ctx); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("engagement with code '%s' %w", engagement.EngagementCode, ErrConflict)
			}
			return fmt.Errorf("insert engagement: %w", err)
		}
		return nil
	})
}

// GetByID fetches an engagement by its identifier.
func (r *BunEngagementRepository) GetByID(ctx context.Context, engagementID string) (*models.Engagement, error) {
	return getEngagement(ctx, r.db, engagementID)
}

func getEngagement(ctx context.Context, db bun.IDB, engagementID string) (*models.Engagement, error) {
	engagement := new(models.Engagement)
	err := db.NewSelect().Model(engagement).Where("engagement_id = ?", engagementID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("engagement '%s' %w", engagementID, ErrNotFound)
		}
		return nil, fmt.Errorf("query engagement: %w", err)
	}
	return engagement, nil
}

// SaveContext closes every open version (e_dt > now, active) by setting
// e_dt = now and is_active = false, then inserts doc as a new version valid
// from now until models.OpenEnded.
func (r *BunEngagementRepository) SaveContext(ctx context.Context, engagementID string, doc models.Document, now time.Time) (*models.EngagementContext, error) {
	now = now.UTC()
	if doc == nil {
		doc = models.Document{}
	}

	version := &models.EngagementContext{
		EngagementContextID: bunx.NewID(),
		EngagementID:        engagementID,
		ContextJSON:         doc,
		StartDate:           now,
		EndDate:             models.OpenEnded,
		IsActive:            true,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := getEngagement(ctx, tx, engagementID); err != nil {
			return err
		}

		_, err := tx.NewUpdate().
			Model((*models.EngagementContext)(nil)).
			Set("e_dt = ?", now).
			Set("is_active = ?", false).
			Where("engagement_id = ?", engagementID).
			Where("is_active = ?", true).
			Where("e_dt > ?", now).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("close engagement context: %w", err)
		}

		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return fmt.Errorf("insert engagement context: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// CurrentContext returns the version open at now.
func (r *BunEngagementRepository) CurrentContext(ctx context.Context, engagementID string, now time.Time) (*models.EngagementContext, error) {
	version := new(models.EngagementContext)
	err := r.db.NewSelect().
		Model(version).
		Where("engagement_id = ?", engagementID).
		Where("is_active = ?", true).
		Where("st_dt <= ?", now.UTC()).
		Where("e_dt > ?", now.UTC()).
		OrderExpr("st_dt DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("context for engagement '%s' %w", engagementID, ErrNotFound)
		}
		return nil, fmt.Errorf("query engagement context: %w", err)
	}
	return version, nil
}
