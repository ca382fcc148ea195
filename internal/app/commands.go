package app

import (
	"context"

	"countryfx/internal/config"
	"countryfx/internal/domain"
	"countryfx/internal/platform/db"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// RefreshOnce runs a single refresh against the configured backend and waits
// for the summary artifact before returning.
func RefreshOnce(ctx context.Context, appCfg *config.AppConfig) (domain.RefreshSummary, error) {
	storage, err := OpenStorage(ctx, appCfg.DbServer)
	if err != nil {
		return domain.RefreshSummary{}, err
	}
	defer storage.Close()

	if err = PrepareStorage(ctx, appCfg.DbServer, storage); err != nil {
		return domain.RefreshSummary{}, err
	}

	pipeline, err := NewPipeline(appCfg, storage.Store, clockwork.NewRealClock())
	if err != nil {
		return domain.RefreshSummary{}, err
	}
	defer pipeline.Close()

	return pipeline.Orchestrator.Run(ctx, appCfg.Refresh.BatchSize)
}

// MigrateUp applies every pending migration regardless of auto_migrate.
func MigrateUp(ctx context.Context, appCfg *config.AppConfig) error {
	storage, err := OpenStorage(ctx, appCfg.DbServer)
	if err != nil {
		return err
	}
	defer storage.Close()

	if err = db.Migrate(ctx, storage.DB, appCfg.DbServer.Driver); err != nil {
		return err
	}
	if err = storage.Store.EnsureMetadata(ctx); err != nil {
		return err
	}
	logrus.Info("✅ Migrations applied")
	return nil
}

// Status reads the refresh metadata and the current GDP leaders.
func Status(ctx context.Context, appCfg *config.AppConfig) (domain.SummaryReport, error) {
	storage, err := OpenStorage(ctx, appCfg.DbServer)
	if err != nil {
		return domain.SummaryReport{}, err
	}
	defer storage.Close()

	meta, err := storage.Store.GetMetadata(ctx)
	if err != nil {
		return domain.SummaryReport{}, err
	}
	top, err := storage.Store.TopByGDP(ctx, appCfg.Summary.TopN)
	if err != nil {
		return domain.SummaryReport{}, err
	}
	return domain.SummaryReport{
		TotalCountries:  meta.TotalCountries,
		TopCountries:    top,
		LastRefreshedAt: meta.LastRefreshedAt,
	}, nil
}
