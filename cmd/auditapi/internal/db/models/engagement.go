package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Audit types an engagement can be scoped to.
const (
	AuditTypeFullScope = "Full-scope IA"
	AuditTypeIFC       = "IFC"
	AuditTypeSOX       = "SOX"
)

// AuditTypes lists every accepted audit type.
var AuditTypes = []string{AuditTypeFullScope, AuditTypeIFC, AuditTypeSOX}

// Engagement lifecycle states.
const (
	EngagementStatusDraft             = "Draft"
	EngagementStatusConfirmed         = "Confirmed"
	EngagementStatusAnalysisRunning   = "Analysis_Running"
	EngagementStatusAnalysisCompleted = "Analysis_Completed"
	EngagementStatusLocked            = "Locked"
)

// OpenEnded is the end date of the current version of a versioned row.
var OpenEnded = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Engagement is one audit assignment for a company.
type Engagement struct {
	bun.BaseModel `bun:"table:engagement,alias:e"`

	EngagementID      string     `bun:"engagement_id,pk,type:varchar(36)"`
	UserID            string     `bun:"user_id,notnull,type:varchar(36)"`
	CompanyID         string     `bun:"company_id,notnull,type:varchar(36)"`
	ReportID          *string    `bun:"report_id,type:varchar(36)"`
	EngagementName    string     `bun:"engagement_name,notnull,type:varchar(255)"`
	EngagementCode    string     `bun:"engagement_code,notnull,unique,type:varchar(50)"`
	AuditType         string     `bun:"audit_type,notnull,type:varchar(20)"`
	ReportingCurrency StringList `bun:"reporting_currency,notnull,type:json"`
	AuditFY           string     `bun:"audit_fy,notnull,type:varchar(10)"`
	Status            string     `bun:"status,notnull,type:varchar(20)"`
	ConfirmedAt       *time.Time `bun:"confirmed_at"`
	ConfirmedBy       *string    `bun:"confirmed_by,type:varchar(36)"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	IsActive          bool       `bun:"is_active,notnull"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (e *Engagement) ValidateForCreate() error {
	switch {
	case e.EngagementID == "":
		return errors.New("engagement_id is required")
	case e.CompanyID == "":
		return errors.New("company_id is required")
	case e.EngagementName == "":
		return errors.New("engagement_name is required")
	case e.EngagementCode == "":
		return errors.New("engagement_code is required")
	case len(e.EngagementCode) > 50:
		return errors.New("engagement_code exceeds maximum length")
	case e.AuditFY == "":
		return errors.New("audit_fy is required")
	case len(e.ReportingCurrency) == 0:
		return errors.New("reporting_currency must list at least one currency")
	}
	for _, t := range AuditTypes {
		if e.AuditType == t {
			return nil
		}
	}
	return errors.New("audit_type must be one of Full-scope IA, IFC, SOX")
}

// EngagementContext is one version of the free-form context captured for an
// engagement. The current version has IsActive set and EndDate = OpenEnded.
type EngagementContext struct {
	bun.BaseModel `bun:"table:engagement_context,alias:ec"`

	EngagementContextID string    `bun:"engagement_context_id,pk,type:varchar(36)"`
	EngagementID        string    `bun:"engagement_id,notnull,type:varchar(36)"`
	ContextJSON         Document  `bun:"context_json,notnull,type:json"`
	StartDate           time.Time `bun:"st_dt,notnull"`
	EndDate             time.Time `bun:"e_dt,notnull"`
	IsActive            bool      `bun:"is_active,notnull"`
}
