package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CountryRepository struct {
	pool *pgxpool.Pool
}

func (r *CountryRepository) BeginRefresh(ctx context.Context) (adapters.RefreshTx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &refreshTx{tx: tx}, nil
}

func (r *CountryRepository) EnsureMetadata(ctx context.Context) error {
	const q = `
		insert into refresh_metadata (id, total_countries, last_refreshed_at)
		values (1, 0, null)
		on conflict (id) do nothing;
	`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to ensure refresh metadata: %w", err)
	}
	return nil
}

func (r *CountryRepository) GetMetadata(ctx context.Context) (domain.RefreshMetadata, error) {
	const q = `select total_countries, last_refreshed_at from refresh_metadata where id = 1;`

	var meta domain.RefreshMetadata
	if err := r.pool.QueryRow(ctx, q).Scan(&meta.TotalCountries, &meta.LastRefreshedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RefreshMetadata{}, nil
		}
		return domain.RefreshMetadata{}, fmt.Errorf("failed to select refresh metadata: %w", err)
	}
	return meta, nil
}

func (r *CountryRepository) TopByGDP(ctx context.Context, limit int) ([]domain.CountryGDP, error) {
	const q = `
		select name, estimated_gdp
		from countries
		where estimated_gdp is not null
		order by estimated_gdp desc, name
		limit $1;
	`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top countries by gdp: %w", err)
	}
	defer rows.Close()

	top := make([]domain.CountryGDP, 0, limit)
	for rows.Next() {
		var c domain.CountryGDP
		if err = rows.Scan(&c.Name, &c.EstimatedGDP); err != nil {
			return nil, fmt.Errorf("failed to scan country gdp: %w", err)
		}
		top = append(top, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top countries: %w", err)
	}
	return top, nil
}

func NewCountryRepository(pool *pgxpool.Pool) *CountryRepository {
	return &CountryRepository{pool: pool}
}

type refreshTx struct {
	tx pgx.Tx
}

func (t *refreshTx) UpsertCountries(ctx context.Context, countries []domain.Country) error {
	if len(countries) == 0 {
		return nil
	}

	payloadJSON, err := sonic.ConfigStd.Marshal(countries)
	if err != nil {
		return fmt.Errorf("failed to marshal countries: %w", err)
	}

	const q = `
		insert into countries (
			name, capital, region, population, currency_code,
			exchange_rate, estimated_gdp, flag_url, last_refreshed_at
		)
		select r.name, r.capital, r.region, r.population, r.currency_code,
		       r.exchange_rate, r.estimated_gdp, r.flag_url, r.last_refreshed_at
		from json_to_recordset($1::json) as r(
			name text, capital text, region text, population bigint, currency_code text,
			exchange_rate numeric, estimated_gdp numeric, flag_url text, last_refreshed_at timestamptz
		)
		on conflict ((lower(name))) do update set
			capital           = excluded.capital,
			region            = excluded.region,
			population        = excluded.population,
			currency_code     = excluded.currency_code,
			exchange_rate     = excluded.exchange_rate,
			estimated_gdp     = excluded.estimated_gdp,
			flag_url          = excluded.flag_url,
			last_refreshed_at = excluded.last_refreshed_at;
	`

	if _, err = t.tx.Exec(ctx, q, json.RawMessage(payloadJSON)); err != nil {
		return fmt.Errorf("failed to upsert %d countries: %w", len(countries), err)
	}
	return nil
}

func (t *refreshTx) UpdateMetadata(ctx context.Context, totalCountries int, refreshedAt time.Time) error {
	const q = `
		insert into refresh_metadata (id, total_countries, last_refreshed_at)
		values (1, $1, $2)
		on conflict (id) do update set
			total_countries   = excluded.total_countries,
			last_refreshed_at = excluded.last_refreshed_at;
	`
	if _, err := t.tx.Exec(ctx, q, totalCountries, refreshedAt); err != nil {
		return fmt.Errorf("failed to update refresh metadata: %w", err)
	}
	return nil
}

func (t *refreshTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *refreshTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
