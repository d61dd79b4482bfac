package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const tracerName = "auditapi/services/engagement"

// CreateInput is the payload of an engagement create request.
type CreateInput struct {
	CompanyID         string   `json:"company_id"`
	EngagementName    string   `json:"engagement_name"`
	EngagementCode    string   `json:"engagement_code"`
	AuditType         string   `json:"audit_type"`
	ReportingCurrency []string `json:"reporting_currency"`
	AuditFY           string   `json:"audit_fy"`
}

// ContextInput is a new version of an engagement's context document.
type ContextInput struct {
	EngagementID string          `json:"engagement_id"`
	Context      models.Document `json:"context"`
}

// ContextVersion is a stored context document.
type ContextVersion struct {
	EngagementContextID string          `json:"engagement_context_id"`
	EngagementID        string          `json:"engagement_id"`
	Context             models.Document `json:"context"`
	StartDate           time.Time       `json:"st_dt"`
	EndDate             time.Time       `json:"e_dt"`
}

// Service orchestrates engagement persistence for the HTTP handlers.
type Service struct {
	repo   repository.EngagementRepository
	clock  clock.Clock
	logger logrus.FieldLogger
}

// NewService constructs a new Service instance.
func NewService(repo repository.EngagementRepository, clk clock.Clock, logger logrus.FieldLogger) *Service {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, clock: clk, logger: logger.WithField("component", "engagement")}
}

// Create stores a new draft engagement. actorID may be empty when the
// caller is a service.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "engagement.Create",
		attribute.String(telemetry.AttrCompanyID, in.CompanyID),
	)
	defer span.End()

	record := &models.Engagement{
		UserID:            actorID,
		CompanyID:         in.CompanyID,
		EngagementName:    in.EngagementName,
		EngagementCode:    in.EngagementCode,
		AuditType:         in.AuditType,
		ReportingCurrency: models.StringList(in.ReportingCurrency),
		AuditFY:           in.AuditFY,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("create engagement: %w", err)
	}

	span.SetAttributes(attribute.String(telemetry.AttrEngagementID, record.EngagementID))
	s.logger.WithFields(logrus.Fields{
		"engagement_id":   record.EngagementID,
		"engagement_code": record.EngagementCode,
		"company_id":      record.CompanyID,
	}).Info("engagement created")
	return record.EngagementID, nil
}

// SaveContext closes the engagement's current context version and stores
// in.Context as the new one.
func (s *Service) SaveContext(ctx context.Context, in ContextInput) (*ContextVersion, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "engagement.SaveContext",
		attribute.String(telemetry.AttrEngagementID, in.EngagementID),
	)
	defer span.End()

	version, err := s.repo.SaveContext(ctx, in.EngagementID, in.Context, s.clock.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save engagement context: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"engagement_id": in.EngagementID,
		"version_id":    version.EngagementContextID,
	}).Debug("engagement context saved")
	return toVersion(version), nil
}

// CurrentContext returns the context version in force now.
func (s *Service) CurrentContext(ctx context.Context, engagementID string) (*ContextVersion, error) {
	version, err := s.repo.CurrentContext(ctx, engagementID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return toVersion(version), nil
}

func toVersion(v *models.EngagementContext) *ContextVersion {
	return &ContextVersion{
		EngagementContextID: v.EngagementContextID,
		EngagementID:        v.EngagementID,
		Context:             v.ContextJSON,
		StartDate:           v.StartDate,
		EndDate:             v.EndDate,
	}
}
