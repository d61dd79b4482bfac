package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Company lifecycle states.
const (
	CompanyStatusDraft     = "Draft"
	CompanyStatusConfirmed = "Confirmed"
	CompanyStatusArchived  = "Archived"
)

// Listing states accepted for a regulatory record.
const (
	ListedStatusListed   = "Listed"
	ListedStatusUnlisted = "Unlisted"
)

// Company is a client organisation under audit.
type Company struct {
	bun.BaseModel `bun:"table:company_master,alias:c"`

	CompanyID            string    `bun:"company_id,pk,type:varchar(36)"`
	LegalName            string    `bun:"legal_name,notnull,type:varchar(255)"`
	DisplayName          *string   `bun:"display_name,type:varchar(255)"`
	EntityTypeID         string    `bun:"entity_type_id,notnull,type:varchar(36)"`
	CountryID            string    `bun:"country_id,notnull,type:varchar(36)"`
	RegisteredAddress    string    `bun:"registered_address,notnull,type:text"`
	OperationalHQAddress *string   `bun:"operational_hq_address,type:text"`
	IsPartOfGroup        bool      `bun:"is_part_of_group,notnull"`
	ParentGroupID        *string   `bun:"parent_group_id,type:varchar(36)"`
	Status               string    `bun:"status,notnull,type:varchar(20)"`
	CreatedBy            string    `bun:"created_by,notnull,type:varchar(36)"`
	UpdatedBy            *string   `bun:"updated_by,type:varchar(36)"`
	CreatedAt            time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt            time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	IsActive             bool      `bun:"is_active,notnull"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (c *Company) ValidateForCreate() error {
	switch {
	case c.CompanyID == "":
		return errors.New("company_id is required")
	case c.LegalName == "":
		return errors.New("legal_name is required")
	case len(c.LegalName) > 255:
		return errors.New("legal_name exceeds maximum length")
	case c.EntityTypeID == "":
		return errors.New("entity_type_id is required")
	case c.CountryID == "":
		return errors.New("country_id is required")
	case c.RegisteredAddress == "":
		return errors.New("registered_address is required")
	case c.CreatedBy == "":
		return errors.New("created_by is required")
	}
	return nil
}

// Regulatory holds the statutory identifiers of a company. There is at most
// one row per company.
type Regulatory struct {
	bun.BaseModel `bun:"table:regulatory_master,alias:r"`

	RegistrationID string     `bun:"registration_id,pk,type:varchar(36)"`
	CompanyID      string     `bun:"company_id,notnull,unique,type:varchar(36)"`
	CountryID      *string    `bun:"country_id,type:varchar(36)"`
	CIN            *string    `bun:"cin,type:varchar(25)"`
	PAN            string     `bun:"pan,notnull,type:varchar(15)"`
	LEI            *string    `bun:"lei,type:varchar(30)"`
	ListedStatus   string     `bun:"listed_status,notnull,type:varchar(10)"`
	ExchangeList   StringList `bun:"exchange_list,type:json"`
	TickerSymbol   *string    `bun:"ticker_symbol,type:varchar(30)"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	IsActive       bool       `bun:"is_active,notnull"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (r *Regulatory) ValidateForCreate() error {
	switch {
	case r.CompanyID == "":
		return errors.New("company_id is required")
	case r.PAN == "":
		return errors.New("pan is required")
	case r.ListedStatus != ListedStatusListed && r.ListedStatus != ListedStatusUnlisted:
		return errors.New("listed_status must be Listed or Unlisted")
	}
	return nil
}

// TaxRegistration is one tax identifier held by a company.
type TaxRegistration struct {
	bun.BaseModel `bun:"table:company_tax_registration,alias:tr"`

	TaxRegID  string    `bun:"tax_reg_id,pk,type:varchar(36)"`
	CompanyID string    `bun:"company_id,notnull,type:varchar(36)"`
	TaxType   string    `bun:"tax_type,notnull,type:varchar(30)"`
	TaxID     string    `bun:"tax_id,notnull,type:varchar(50)"`
	CountryID *string   `bun:"country_id,type:varchar(36)"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive  bool      `bun:"is_active,notnull"`
}

// IndustrySize classifies a company by sector and size. There is at most one
// row per company.
type IndustrySize struct {
	bun.BaseModel `bun:"table:company_industry_size_master,alias:isz"`

	IndustrySizeID           string    `bun:"industry_size_id,pk,type:varchar(36)"`
	CompanyID                string    `bun:"company_id,notnull,unique,type:varchar(36)"`
	IndustrySectorID         string    `bun:"industry_sector_id,notnull,type:varchar(36)"`
	SubIndustryID            string    `bun:"sub_industry_id,notnull,type:varchar(36)"`
	IndustryCodeID           string    `bun:"industry_code_id,notnull,type:varchar(36)"`
	AnnualTurnoverID         *string   `bun:"annual_turnover_id,type:varchar(36)"`
	EmployeeBandID           *string   `bun:"employee_band_id,type:varchar(36)"`
	ManufacturingPlantsCount *int      `bun:"manufacturing_plants_count"`
	SEZEOUPresence           *bool     `bun:"sez_eou_presence"`
	RevenueIndicatorID       string    `bun:"revenue_indicator_id,notnull,type:varchar(36)"`
	SpendIndicatorID         string    `bun:"spend_indicator_id,notnull,type:varchar(36)"`
	CreatedAt                time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt                time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	IsActive                 bool      `bun:"is_active,notnull"`
}

// ManufacturingSite is one plant operated by a company.
type ManufacturingSite struct {
	bun.BaseModel `bun:"table:company_manufacturing_list,alias:ms"`

	ManufacturingID string    `bun:"manufacturing_id,pk,type:varchar(36)"`
	CompanyID       string    `bun:"company_id,notnull,type:varchar(36)"`
	PlantName       *string   `bun:"plant_name,type:varchar(255)"`
	City            *string   `bun:"city,type:varchar(100)"`
	State           *string   `bun:"state,type:varchar(100)"`
	CountryID       *string   `bun:"country_id,type:varchar(36)"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	IsActive        bool      `bun:"is_active,notnull"`
}

// CompanySearchRow is one company with the columns search joins in.
type CompanySearchRow struct {
	CompanyID        string  `bun:"company_id"`
	LegalName        string  `bun:"legal_name"`
	CountryID        string  `bun:"country_id"`
	CIN              *string `bun:"cin"`
	IndustrySectorID *string `bun:"industry_sector_id"`
}
