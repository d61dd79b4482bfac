// Package master serves the reference data behind the company and engagement
// pick lists. Results are cached in memory for a short TTL; the tables change
// only through migrations.
package master

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/db/models"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/repository"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/telemetry"
)

const tracerName = "auditapi/services/master"

// DefaultCacheSize bounds the number of cached lists.
const DefaultCacheSize = 64

// Option is a generic id/name pick list entry.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubIndustryOption is a sub-industry with its parent sector.
type SubIndustryOption struct {
	ID       string `json:"id"`
	SectorID string `json:"sector_id"`
	Name     string `json:"name"`
}

// IndustryCodeOption is a classification code such as NIC or SIC.
type IndustryCodeOption struct {
	ID          string  `json:"id"`
	CodeType    string  `json:"code_type"`
	Description *string `json:"description"`
}

// BandOption is a labelled range (turnover, headcount).
type BandOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// IndicatorOption is a revenue or spend transaction indicator.
type IndicatorOption struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// CountryOption is a country currently in force.
type CountryOption struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	CurrencyCode string `json:"currency_code"`
	CurrencyName string `json:"currency_name"`
}

// Service reads reference lists through a MasterRepository.
type Service struct {
	repo  repository.MasterRepository
	cache *lru.LRU[string, any]
	clock clock.Clock
}

// Config tunes the in-memory cache. A zero TTL disables caching.
type Config struct {
	CacheTTL  time.Duration
	CacheSize int
}

// NewService constructs a Service. The clock decides which country rows are
// in force; pass clock.New() outside tests.
func NewService(repo repository.MasterRepository, cfg Config, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.New()
	}
	s := &Service{repo: repo, clock: clk}
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = DefaultCacheSize
		}
		s.cache = lru.NewLRU[string, any](size, nil, cfg.CacheTTL)
	}
	return s
}

// Purge drops every cached list.
func (s *Service) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// cached returns the list stored under key, loading and mapping it on a miss.
func cached[M, T any](ctx context.Context, s *Service, key string, load func(context.Context) ([]M, error), mapFn func(M) T) ([]T, error) {
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return hit.([]T), nil
		}
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "master.Load",
		attribute.String(telemetry.AttrMasterTable, key),
	)
	defer span.End()

	rows, err := load(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapFn(row))
	}
	if s.cache != nil {
		s.cache.Add(key, out)
	}
	return out, nil
}

func (s *Service) EntityTypes(ctx context.Context) ([]Option, error) {
	return cached(ctx, s, "entity_types", s.repo.EntityTypes, func(r models.EntityType) Option {
		return Option{ID: r.EntityTypeID, Name: r.Name}
	})
}

func (s *Service) Groups(ctx context.Context) ([]Option, error) {
	return cached(ctx, s, "groups", s.repo.Groups, func(r models.Group) Option {
		return Option{ID: r.GroupID, Name: r.Name}
	})
}

func (s *Service) Industries(ctx context.Context) ([]Option, error) {
	return cached(ctx, s, "industries", s.repo.Industries, func(r models.Industry) Option {
		return Option{ID: r.IndustryID, Name: r.Name}
	})
}

// SubIndustries lists sub-industries, optionally for one sector only.
func (s *Service) SubIndustries(ctx context.Context, sectorID string) ([]SubIndustryOption, error) {
	load := func(ctx context.Context) ([]models.SubIndustry, error) {
		return s.repo.SubIndustries(ctx, sectorID)
	}
	return cached(ctx, s, "sub_industries:"+sectorID, load, func(r models.SubIndustry) SubIndustryOption {
		return SubIndustryOption{ID: r.SubIndustryID, SectorID: r.IndustryID, Name: r.SubIndustryName}
	})
}

// IndustryCodes lists classification codes, optionally of one type only.
func (s *Service) IndustryCodes(ctx context.Context, codeType string) ([]IndustryCodeOption, error) {
	load := func(ctx context.Context) ([]models.IndustryCode, error) {
		return s.repo.IndustryCodes(ctx, codeType)
	}
	return cached(ctx, s, "industry_codes:"+codeType, load, func(r models.IndustryCode) IndustryCodeOption {
		return IndustryCodeOption{ID: r.IndustryCodeID, CodeType: r.CodeType, Description: r.CodeDescription}
	})
}

func (s *Service) NatureOfOperations(ctx context.Context) ([]Option, error) {
	return cached(ctx, s, "nature_of_operations", s.repo.NatureOfOperations, func(r models.NatureOfOperation) Option {
		return Option{ID: r.NatureOfOperationID, Name: r.Name}
	})
}

func (s *Service) BusinessModels(ctx context.Context) ([]Option, error) {
	return cached(ctx, s, "business_models", s.repo.BusinessModels, func(r models.BusinessModel) Option {
		return Option{ID: r.BusinessModelID, Name: r.Name}
	})
}

func (s *Service) AnnualTurnovers(ctx context.Context) ([]BandOption, error) {
	return cached(ctx, s, "annual_turnovers", s.repo.AnnualTurnovers, func(r models.AnnualTurnover) BandOption {
		return BandOption{ID: r.AnnualTurnoverID, Label: r.BandLabel}
	})
}

func (s *Service) EmployeeBands(ctx context.Context) ([]BandOption, error) {
	return cached(ctx, s, "employee_bands", s.repo.EmployeeBands, func(r models.EmployeeBand) BandOption {
		return BandOption{ID: r.EmployeeBandID, Label: r.BandLabel}
	})
}

func (s *Service) TransactionIndicators(ctx context.Context) ([]IndicatorOption, error) {
	return cached(ctx, s, "transaction_indicators", s.repo.TransactionIndicators, func(r models.TransactionIndicator) IndicatorOption {
		return IndicatorOption{ID: r.IndicatorID, Type: r.IndicatorType, Label: r.IndicatorLabel}
	})
}

// Countries lists the countries in force now, by name. A cached list may lag
// a country's validity window by up to the cache TTL.
func (s *Service) Countries(ctx context.Context) ([]CountryOption, error) {
	load := func(ctx context.Context) ([]models.Country, error) {
		return s.repo.Countries(ctx, s.clock.Now())
	}
	return cached(ctx, s, "countries", load, func(r models.Country) CountryOption {
		return CountryOption{
			ID:           r.CountryID,
			Name:         r.CountryName,
			Code:         r.CountryCode,
			CurrencyCode: r.CurrencyCode,
			CurrencyName: r.CurrencyName,
		}
	})
}
