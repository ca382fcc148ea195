package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"countryfx/internal/adapters"
	"countryfx/internal/domain"
)

const countryColumns = 9

// Store is the database/sql implementation of adapters.CountryStore, shared
// by the MySQL and SQLite backends.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) BeginRefresh(ctx context.Context) (adapters.RefreshTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &refreshTx{tx: tx, dialect: s.dialect}, nil
}

func (s *Store) EnsureMetadata(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.ensureMetadata); err != nil {
		return fmt.Errorf("failed to ensure refresh metadata: %w", err)
	}
	return nil
}

func (s *Store) GetMetadata(ctx context.Context) (domain.RefreshMetadata, error) {
	const q = `select total_countries, last_refreshed_at from refresh_metadata where id = 1`

	var (
		meta domain.RefreshMetadata
		at   sql.NullTime
	)
	if err := s.db.QueryRowContext(ctx, q).Scan(&meta.TotalCountries, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RefreshMetadata{}, nil
		}
		return domain.RefreshMetadata{}, fmt.Errorf("failed to select refresh metadata: %w", err)
	}
	if at.Valid {
		t := at.Time.UTC()
		meta.LastRefreshedAt = &t
	}
	return meta, nil
}

func (s *Store) TopByGDP(ctx context.Context, limit int) ([]domain.CountryGDP, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.topByGDP, limit)
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

type refreshTx struct {
	tx      *sql.Tx
	dialect Dialect
}

// UpsertCountries writes all rows in one multi-row insert.
func (t *refreshTx) UpsertCountries(ctx context.Context, countries []domain.Country) error {
	if len(countries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`insert into countries (
		name, capital, region, population, currency_code,
		exchange_rate, estimated_gdp, flag_url, last_refreshed_at
	) values `)

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", countryColumns), ", ") + ")"
	args := make([]any, 0, len(countries)*countryColumns)
	for i, c := range countries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row)
		args = append(args,
			c.Name, c.Capital, c.Region, c.Population, c.CurrencyCode,
			c.ExchangeRate, c.EstimatedGDP, c.FlagURL, c.LastRefreshedAt.UTC(),
		)
	}
	sb.WriteString(t.dialect.upsertTail)

	if _, err := t.tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert %d countries: %w", len(countries), err)
	}
	return nil
}

func (t *refreshTx) UpdateMetadata(ctx context.Context, totalCountries int, refreshedAt time.Time) error {
	if _, err := t.tx.ExecContext(ctx, t.dialect.upsertMetadata, totalCountries, refreshedAt.UTC()); err != nil {
		return fmt.Errorf("failed to update refresh metadata: %w", err)
	}
	return nil
}

func (t *refreshTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *refreshTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
