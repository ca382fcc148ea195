package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"countryfx/internal/config"
	"countryfx/internal/platform/db/migrations"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	case config.DriverMySQL:
		return goose.DialectMySQL, nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Migrate applies every pending embedded migration for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	dir, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("failed to open %s migrations: %w", driver, err)
	}
	provider, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		logrus.WithField("version", r.Source.Version).Infof("Applied migration %s in %s", r.Source.Path, r.Duration)
	}
	return nil
}
