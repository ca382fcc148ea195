package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"

	"countryfx/internal/adapters"
	"countryfx/internal/adapters/cache"
	"countryfx/internal/adapters/httpclient"
	"countryfx/internal/adapters/postgres"
	"countryfx/internal/adapters/sqlstore"
	"countryfx/internal/adapters/summary"
	"countryfx/internal/config"
	"countryfx/internal/country"
	"countryfx/internal/platform/db"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger.
func SetupLogging(level string) {
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
}

// Storage is an opened backend plus the database/sql handle migrations run on.
type Storage struct {
	Store adapters.CountryStore
	DB    *sql.DB
	close []func()
}

func (s *Storage) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

// OpenStorage connects to the configured backend.
func OpenStorage(ctx context.Context, cfg config.DbServer) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.CreatePoolAndPing(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("error connecting to postgres: %w", err)
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		return &Storage{
			Store: postgres.NewCountryRepository(pool),
			DB:    sqlDB,
			close: []func(){pool.Close, func() { _ = sqlDB.Close() }},
		}, nil
	case config.DriverMySQL, config.DriverSQLite:
		sqlDB, err := db.OpenSQL(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("error connecting to %s: %w", cfg.Driver, err)
		}
		dialect := sqlstore.MySQL
		if cfg.Driver == config.DriverSQLite {
			dialect = sqlstore.SQLite
		}
		return &Storage{
			Store: sqlstore.New(sqlDB, dialect),
			DB:    sqlDB,
			close: []func(){func() { _ = sqlDB.Close() }},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Pipeline is everything a refresh run needs, wired from config.
type Pipeline struct {
	Orchestrator *country.Orchestrator
	RateCache    *cache.RateCache
}

func (p *Pipeline) Close() {
	p.Orchestrator.Wait()
	p.RateCache.Close()
}

func NewPipeline(cfg *config.AppConfig, store adapters.CountryStore, clock clockwork.Clock) (*Pipeline, error) {
	rateCache, err := cache.NewRateCache(cfg.Refresh.CacheTTL(), clock)
	if err != nil {
		return nil, err
	}

	baseHTTPClient := &http.Client{Timeout: cfg.HTTPClient.Timeout()}
	sourceClient := httpclient.NewSourceClient(
		baseHTTPClient,
		cfg.Sources.CountriesURL,
		cfg.Sources.RatesURL,
		rateCache,
		clock,
	)

	var generator adapters.SummaryGenerator
	if strings.TrimSpace(cfg.Summary.Path) != "" {
		fileGen, genErr := summary.NewFileGenerator(cfg.Summary.Path, cfg.Summary.Format)
		if genErr != nil {
			rateCache.Close()
			return nil, genErr
		}
		generator = fileGen
	}

	orchestrator := country.NewOrchestrator(
		sourceClient,
		sourceClient,
		store,
		generator,
		country.NewTransformer(country.NewRandomMultiplier(cfg.Refresh.GDPSeed)),
		clock,
		country.OrchestratorConfig{BaseCurrency: cfg.Sources.BaseCurrency, TopN: cfg.Summary.TopN},
	)
	return &Pipeline{Orchestrator: orchestrator, RateCache: rateCache}, nil
}

// PrepareStorage applies migrations when enabled and makes sure the metadata row exists.
func PrepareStorage(ctx context.Context, cfg config.DbServer, storage *Storage) error {
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, storage.DB, cfg.Driver); err != nil {
			return err
		}
		logrus.Info("✅ Migrations applied")
	}
	if err := storage.Store.EnsureMetadata(ctx); err != nil {
		return err
	}
	return nil
}
