package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reference tables backing the pick lists of the company and engagement forms.

type EntityType struct {
	bun.BaseModel `bun:"table:entity_type_master,alias:et"`

	EntityTypeID string    `bun:"entity_type_id,pk,type:varchar(36)"`
	Name         string    `bun:"name,notnull,type:varchar(100)"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive     bool      `bun:"is_active,notnull"`
}

type Group struct {
	bun.BaseModel `bun:"table:group_master,alias:g"`

	GroupID   string    `bun:"group_id,pk,type:varchar(36)"`
	Name      string    `bun:"name,notnull,type:varchar(255)"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive  bool      `bun:"is_active,notnull"`
}

type Industry struct {
	bun.BaseModel `bun:"table:industry_master,alias:ind"`

	IndustryID string    `bun:"industry_id,pk,type:varchar(36)"`
	Name       string    `bun:"name,notnull,type:varchar(255)"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive   bool      `bun:"is_active,notnull"`
}

type SubIndustry struct {
	bun.BaseModel `bun:"table:sub_industry_master,alias:si"`

	SubIndustryID   string    `bun:"sub_industry_id,pk,type:varchar(36)"`
	IndustryID      string    `bun:"industry_id,notnull,type:varchar(36)"`
	SubIndustryName string    `bun:"sub_industry_name,notnull,type:varchar(255)"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive        bool      `bun:"is_active,notnull"`
}

type IndustryCode struct {
	bun.BaseModel `bun:"table:industry_code_master,alias:ic"`

	IndustryCodeID  string    `bun:"industry_code_id,pk,type:varchar(36)"`
	CodeType        string    `bun:"code_type,notnull,type:varchar(30)"`
	CodeDescription *string   `bun:"code_description,type:varchar(255)"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive        bool      `bun:"is_active,notnull"`
}

type NatureOfOperation struct {
	bun.BaseModel `bun:"table:nature_of_operation_master,alias:noo"`

	NatureOfOperationID string    `bun:"nature_of_operation_id,pk,type:varchar(36)"`
	Name                string    `bun:"name,notnull,type:varchar(100)"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive            bool      `bun:"is_active,notnull"`
}

type BusinessModel struct {
	bun.BaseModel `bun:"table:business_model_master,alias:bm"`

	BusinessModelID string    `bun:"business_model_id,pk,type:varchar(36)"`
	Name            string    `bun:"name,notnull,type:varchar(100)"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive        bool      `bun:"is_active,notnull"`
}

type AnnualTurnover struct {
	bun.BaseModel `bun:"table:annual_turnover_master,alias:at"`

	AnnualTurnoverID string    `bun:"annual_turnover_id,pk,type:varchar(36)"`
	BandLabel        string    `bun:"band_label,notnull,type:varchar(50)"`
	IsIndian         bool      `bun:"is_indian,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive         bool      `bun:"is_active,notnull"`
}

type EmployeeBand struct {
	bun.BaseModel `bun:"table:employee_master,alias:emp"`

	EmployeeBandID string    `bun:"employee_band_id,pk,type:varchar(36)"`
	BandLabel      string    `bun:"band_label,notnull,type:varchar(50)"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive       bool      `bun:"is_active,notnull"`
}

// Transaction indicator kinds.
const (
	IndicatorRevenue = "Revenue"
	IndicatorSpend   = "Spend"
)

type TransactionIndicator struct {
	bun.BaseModel `bun:"table:transaction_indicator,alias:ti"`

	IndicatorID    string    `bun:"indicator_id,pk,type:varchar(36)"`
	IndicatorType  string    `bun:"indicator_type,notnull,type:varchar(10)"`
	IndicatorLabel string    `bun:"indicator_label,notnull,type:varchar(100)"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive       bool      `bun:"is_active,notnull"`
}

// Country is versioned by (country_id, st_dt); a row is current while
// st_dt <= now < e_dt.
type Country struct {
	bun.BaseModel `bun:"table:country_master,alias:cm"`

	CountryID    string    `bun:"country_id,pk,type:varchar(36)"`
	StartDate    time.Time `bun:"st_dt,pk"`
	EndDate      time.Time `bun:"e_dt,notnull"`
	CountryName  string    `bun:"country_name,notnull,type:varchar(100)"`
	CountryCode  string    `bun:"country_code,notnull,type:varchar(3)"`
	CurrencyCode string    `bun:"currency_code,notnull,type:varchar(3)"`
	CurrencyName string    `bun:"currency_name,notnull,type:varchar(50)"`
	FlagLink     *string   `bun:"flag_link,type:varchar(200)"`
	Active       bool      `bun:"active,notnull"`
	IsActive     bool      `bun:"is_active,notnull"`
}
