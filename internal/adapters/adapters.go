package adapters

import (
	"context"
	"countryfx/internal/domain"
	"time"
)

type CountrySource interface {
	FetchCountries(ctx context.Context) ([]domain.RawCountry, error)
}

type RateSource interface {
	FetchExchangeRates(ctx context.Context, base string) (domain.RateTable, error)
}

type RateCache interface {
	Get(base string) (domain.RateTable, bool)
	Put(base string, rates domain.RateTable, fetchedAt time.Time)
}

// CountryStore owns the countries table and the refresh metadata row.
type CountryStore interface {
	BeginRefresh(ctx context.Context) (RefreshTx, error)
	EnsureMetadata(ctx context.Context) error
	GetMetadata(ctx context.Context) (domain.RefreshMetadata, error)
	TopByGDP(ctx context.Context, limit int) ([]domain.CountryGDP, error)
}

// RefreshTx is the single transaction a refresh run writes through.
type RefreshTx interface {
	UpsertCountries(ctx context.Context, countries []domain.Country) error
	UpdateMetadata(ctx context.Context, totalCountries int, refreshedAt time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type SummaryGenerator interface {
	Generate(ctx context.Context, report domain.SummaryReport) error
}
