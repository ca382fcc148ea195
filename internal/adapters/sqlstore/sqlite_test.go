package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"countryfx/internal/adapters/sqlstore"
	"countryfx/internal/config"
	"countryfx/internal/domain"
	"countryfx/internal/platform/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) (*sql.DB, *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()

	cfg := config.DbServer{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "countries.db")}
	sqlDB, err := db.OpenSQL(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(ctx, sqlDB, config.DriverSQLite))
	return sqlDB, sqlstore.New(sqlDB, sqlstore.SQLite)
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func country(name string, gdp string, at time.Time) domain.Country {
	c := domain.Country{
		Name:            name,
		Capital:         strPtr(name + " City"),
		Population:      int64Ptr(1000),
		CurrencyCode:    strPtr("XLD"),
		ExchangeRate:    decimal.NewNullDecimal(decimal.RequireFromString("1.5")),
		FlagURL:         strPtr("https://flags.example/" + name + ".svg"),
		LastRefreshedAt: at,
	}
	if gdp != "" {
		c.EstimatedGDP = decimal.NewNullDecimal(decimal.RequireFromString(gdp))
	}
	return c
}

func upsertAndCommit(t *testing.T, store *sqlstore.Store, countries []domain.Country, at time.Time) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginRefresh(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertCountries(ctx, countries))
	require.NoError(t, tx.UpdateMetadata(ctx, len(countries), at))
	require.NoError(t, tx.Commit(ctx))
}

func TestSQLiteStore_UpsertAndMetadata(t *testing.T) {
	sqlDB, store := setupSQLite(t)
	ctx := context.Background()
	at := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	meta, err := store.GetMetadata(ctx)
	require.NoError(t, err)
	require.Zero(t, meta.TotalCountries)
	require.Nil(t, meta.LastRefreshedAt)

	noCurrency := domain.Country{Name: "Zland", EstimatedGDP: decimal.NewNullDecimal(decimal.Zero), LastRefreshedAt: at}
	upsertAndCommit(t, store, []domain.Country{country("Xland", "1500001.5", at), noCurrency}, at)

	var (
		code *string
		rate decimal.NullDecimal
		gdp  decimal.NullDecimal
		pop  sql.NullInt64
	)
	require.NoError(t, sqlDB.QueryRowContext(ctx,
		`select currency_code, exchange_rate, estimated_gdp, population from countries where name = 'Xland'`).
		Scan(&code, &rate, &gdp, &pop))
	require.Equal(t, "XLD", *code)
	require.True(t, rate.Decimal.Equal(decimal.RequireFromString("1.5")))
	require.True(t, gdp.Decimal.Equal(decimal.RequireFromString("1500001.5")))
	require.EqualValues(t, 1000, pop.Int64)

	require.NoError(t, sqlDB.QueryRowContext(ctx,
		`select currency_code, exchange_rate, estimated_gdp from countries where name = 'Zland'`).
		Scan(&code, &rate, &gdp))
	require.Nil(t, code)
	require.False(t, rate.Valid)
	require.True(t, gdp.Decimal.IsZero())

	meta, err = store.GetMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, meta.TotalCountries)
	require.NotNil(t, meta.LastRefreshedAt)
	require.True(t, meta.LastRefreshedAt.Equal(at))
}

func TestSQLiteStore_UpsertIsIdempotent(t *testing.T) {
	sqlDB, store := setupSQLite(t)
	ctx := context.Background()
	first := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	upsertAndCommit(t, store, []domain.Country{country("Xland", "10", first)}, first)
	var id int64
	var createdAt string
	require.NoError(t, sqlDB.QueryRowContext(ctx, `select id, cast(created_at as text) from countries where name = 'Xland'`).Scan(&id, &createdAt))

	updated := country("Xland", "20", first.Add(time.Hour))
	updated.Capital = nil
	upsertAndCommit(t, store, []domain.Country{updated}, first.Add(time.Hour))

	var (
		count      int
		id2        int64
		createdAt2 string
		capital    sql.NullString
		gdp        decimal.Decimal
	)
	require.NoError(t, sqlDB.QueryRowContext(ctx, `select count(*) from countries`).Scan(&count))
	require.Equal(t, 1, count)
	require.NoError(t, sqlDB.QueryRowContext(ctx,
		`select id, cast(created_at as text), capital, estimated_gdp from countries where name = 'Xland'`).
		Scan(&id2, &createdAt2, &capital, &gdp))
	require.Equal(t, id, id2)
	require.Equal(t, createdAt, createdAt2)
	require.False(t, capital.Valid)
	require.True(t, gdp.Equal(decimal.NewFromInt(20)))
}

func TestSQLiteStore_NameIsCaseInsensitive(t *testing.T) {
	sqlDB, store := setupSQLite(t)
	at := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	upsertAndCommit(t, store, []domain.Country{country("Xland", "1", at)}, at)
	upsertAndCommit(t, store, []domain.Country{country("XLAND", "2", at.Add(time.Hour))}, at.Add(time.Hour))

	var (
		count int
		name  string
		gdp   decimal.Decimal
	)
	require.NoError(t, sqlDB.QueryRow(`select count(*) from countries`).Scan(&count))
	require.Equal(t, 1, count)
	require.NoError(t, sqlDB.QueryRow(`select name, estimated_gdp from countries`).Scan(&name, &gdp))
	require.Equal(t, "Xland", name, "the first spelling is kept")
	require.True(t, gdp.Equal(decimal.NewFromInt(2)))
}

func TestSQLiteStore_RollbackLeavesNothing(t *testing.T) {
	sqlDB, store := setupSQLite(t)
	ctx := context.Background()
	at := time.Now().UTC()

	tx, err := store.BeginRefresh(ctx)
	require.NoError(t, err)
	batch := make([]domain.Country, 0, 100)
	for i := 0; i < 100; i++ {
		batch = append(batch, country(fmt.Sprintf("Country %03d", i), "1", at))
	}
	require.NoError(t, tx.UpsertCountries(ctx, batch))
	require.NoError(t, tx.UpdateMetadata(ctx, 100, at))

	bad := country("Broken", "1", at)
	bad.ExchangeRate = decimal.NullDecimal{}
	require.Error(t, tx.UpsertCountries(ctx, []domain.Country{bad}), "code without rate must be rejected")
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx), "second rollback is a no-op")

	var count int
	require.NoError(t, sqlDB.QueryRowContext(ctx, `select count(*) from countries`).Scan(&count))
	require.Zero(t, count)

	meta, err := store.GetMetadata(ctx)
	require.NoError(t, err)
	require.Zero(t, meta.TotalCountries)
	require.Nil(t, meta.LastRefreshedAt)
}

func TestSQLiteStore_EnsureMetadata(t *testing.T) {
	sqlDB, store := setupSQLite(t)
	ctx := context.Background()

	_, err := sqlDB.ExecContext(ctx, `delete from refresh_metadata`)
	require.NoError(t, err)

	require.NoError(t, store.EnsureMetadata(ctx))
	require.NoError(t, store.EnsureMetadata(ctx))

	var count int
	require.NoError(t, sqlDB.QueryRowContext(ctx, `select count(*) from refresh_metadata`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestSQLiteStore_TopByGDP(t *testing.T) {
	_, store := setupSQLite(t)
	at := time.Now().UTC()

	upsertAndCommit(t, store, []domain.Country{
		country("Nine", "9", at),
		country("Large", "1000", at),
		country("Unknown", "", at),
		country("Medium", "100.5", at),
	}, at)

	top, err := store.TopByGDP(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, []string{"Large", "Medium", "Nine"}, []string{top[0].Name, top[1].Name, top[2].Name})
	require.True(t, top[1].EstimatedGDP.Decimal.Equal(decimal.RequireFromString("100.5")))
}
