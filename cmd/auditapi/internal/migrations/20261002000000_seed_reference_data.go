package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20261002000000, down_20261002000000)
}

// seedEpoch is the start date of seeded country rows.
var seedEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func referenceSeed(now time.Time) []struct {
	name string
	rows any
} {
	return []struct {
		name string
		rows any
	}{
		{"entity types", &[]models.EntityType{
			{EntityTypeID: "01", Name: "Public Limited Company", CreatedAt: now, IsActive: true},
			{EntityTypeID: "02", Name: "Private Limited Company", CreatedAt: now, IsActive: true},
			{EntityTypeID: "03", Name: "Limited Liability Partnership", CreatedAt: now, IsActive: true},
			{EntityTypeID: "04", Name: "Partnership Firm", CreatedAt: now, IsActive: true},
			{EntityTypeID: "05", Name: "Sole Proprietorship", CreatedAt: now, IsActive: true},
		}},
		{"industries", &[]models.Industry{
			{IndustryID: "01", Name: "Manufacturing", CreatedAt: now, IsActive: true},
			{IndustryID: "02", Name: "Financial Services", CreatedAt: now, IsActive: true},
			{IndustryID: "03", Name: "Information Technology", CreatedAt: now, IsActive: true},
			{IndustryID: "04", Name: "Retail & Consumer", CreatedAt: now, IsActive: true},
		}},
		{"sub industries", &[]models.SubIndustry{
			{SubIndustryID: "01", IndustryID: "01", SubIndustryName: "Automotive Components", CreatedAt: now, IsActive: true},
			{SubIndustryID: "02", IndustryID: "01", SubIndustryName: "Pharmaceuticals", CreatedAt: now, IsActive: true},
			{SubIndustryID: "03", IndustryID: "02", SubIndustryName: "Banking", CreatedAt: now, IsActive: true},
			{SubIndustryID: "04", IndustryID: "02", SubIndustryName: "Insurance", CreatedAt: now, IsActive: true},
			{SubIndustryID: "05", IndustryID: "03", SubIndustryName: "IT Services", CreatedAt: now, IsActive: true},
			{SubIndustryID: "06", IndustryID: "04", SubIndustryName: "E-commerce", CreatedAt: now, IsActive: true},
		}},
		{"industry codes", &[]models.IndustryCode{
			{IndustryCodeID: "01", CodeType: "NIC", CodeDescription: strPtr("29301 - Manufacture of motor vehicle parts"), CreatedAt: now, IsActive: true},
			{IndustryCodeID: "02", CodeType: "NIC", CodeDescription: strPtr("21001 - Manufacture of medicinal substances"), CreatedAt: now, IsActive: true},
			{IndustryCodeID: "03", CodeType: "NIC", CodeDescription: strPtr("64191 - Monetary intermediation of commercial banks"), CreatedAt: now, IsActive: true},
			{IndustryCodeID: "04", CodeType: "SIC", CodeDescription: strPtr("7371 - Computer programming services"), CreatedAt: now, IsActive: true},
		}},
		{"natures of operation", &[]models.NatureOfOperation{
			{NatureOfOperationID: "01", Name: "Manufacturing", CreatedAt: now, IsActive: true},
			{NatureOfOperationID: "02", Name: "Trading", CreatedAt: now, IsActive: true},
			{NatureOfOperationID: "03", Name: "Services", CreatedAt: now, IsActive: true},
		}},
		{"business models", &[]models.BusinessModel{
			{BusinessModelID: "01", Name: "B2B", CreatedAt: now, IsActive: true},
			{BusinessModelID: "02", Name: "B2C", CreatedAt: now, IsActive: true},
			{BusinessModelID: "03", Name: "B2B2C", CreatedAt: now, IsActive: true},
		}},
		{"annual turnover bands", &[]models.AnnualTurnover{
			{AnnualTurnoverID: "01", BandLabel: "Up to INR 50 Cr", IsIndian: true, CreatedAt: now, IsActive: true},
			{AnnualTurnoverID: "02", BandLabel: "INR 50-250 Cr", IsIndian: true, CreatedAt: now, IsActive: true},
			{AnnualTurnoverID: "03", BandLabel: "INR 250-1000 Cr", IsIndian: true, CreatedAt: now, IsActive: true},
			{AnnualTurnoverID: "04", BandLabel: "Above INR 1000 Cr", IsIndian: true, CreatedAt: now, IsActive: true},
		}},
		{"employee bands", &[]models.EmployeeBand{
			{EmployeeBandID: "01", BandLabel: "1-50", CreatedAt: now, IsActive: true},
			{EmployeeBandID: "02", BandLabel: "51-250", CreatedAt: now, IsActive: true},
			{EmployeeBandID: "03", BandLabel: "251-1000", CreatedAt: now, IsActive: true},
			{EmployeeBandID: "04", BandLabel: "1000+", CreatedAt: now, IsActive: true},
		}},
		{"transaction indicators", &[]models.TransactionIndicator{
			{IndicatorID: "01", IndicatorType: models.IndicatorRevenue, IndicatorLabel: "Domestic sales", CreatedAt: now, IsActive: true},
			{IndicatorID: "02", IndicatorType: models.IndicatorRevenue, IndicatorLabel: "Export sales", CreatedAt: now, IsActive: true},
			{IndicatorID: "03", IndicatorType: models.IndicatorSpend, IndicatorLabel: "Domestic procurement", CreatedAt: now, IsActive: true},
			{IndicatorID: "04", IndicatorType: models.IndicatorSpend, IndicatorLabel: "Imports", CreatedAt: now, IsActive: true},
		}},
		{"countries", &[]models.Country{
			{CountryID: "IN", StartDate: seedEpoch, EndDate: models.OpenEnded, CountryName: "India", CountryCode: "IND", CurrencyCode: "INR", CurrencyName: "Indian Rupee", Active: true, IsActive: true},
			{CountryID: "US", StartDate: seedEpoch, EndDate: models.OpenEnded, CountryName: "United States", CountryCode: "USA", CurrencyCode: "USD", CurrencyName: "US Dollar", Active: true, IsActive: true},
			{CountryID: "GB", StartDate: seedEpoch, EndDate: models.OpenEnded, CountryName: "United Kingdom", CountryCode: "GBR", CurrencyCode: "GBP", CurrencyName: "Pound Sterling", Active: true, IsActive: true},
			{CountryID: "SG", StartDate: seedEpoch, EndDate: models.OpenEnded, CountryName: "Singapore", CountryCode: "SGP", CurrencyCode: "SGD", CurrencyName: "Singapore Dollar", Active: true, IsActive: true},
			{CountryID: "AE", StartDate: seedEpoch, EndDate: models.OpenEnded, CountryName: "United Arab Emirates", CountryCode: "ARE", CurrencyCode: "AED", CurrencyName: "UAE Dirham", Active: true, IsActive: true},
		}},
	}
}

// up_20261002000000 seeds the reference tables with a baseline pick list
func up_20261002000000(ctx context.Context, db *bun.DB) error {
	for _, seed := range referenceSeed(time.Now().UTC()) {
		fmt.Printf(" [up] seeding %s...", seed.name)
		_, err := db.NewInsert().
			Model(seed.rows).
			On("CONFLICT DO NOTHING"). // Idempotent
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed.name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}

// down_20261002000000 removes the seeded rows
func down_20261002000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] removing seeded reference data...")
	for _, seed := range referenceSeed(time.Now().UTC()) {
		_, err := db.NewDelete().
			Model(seed.rows).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to remove seeded %s: %w", seed.name, err)
		}
	}
	fmt.Println(" OK")
	return nil
}
