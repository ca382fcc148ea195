package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"countryfx/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// OpenSQL opens a database/sql handle for the mysql or sqlite drivers and pings it.
func OpenSQL(ctx context.Context, cfg config.DbServer) (*sql.DB, error) {
	var driverName string
	switch cfg.Driver {
	case config.DriverMySQL:
		driverName = "mysql"
	case config.DriverSQLite:
		driverName = "sqlite"
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("driver %q is not served by database/sql", cfg.Driver)
	}

	db, err := sql.Open(driverName, cfg.GetConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer; a second connection would only ever wait on the file lock
		db.SetMaxOpenConns(1)
	} else {
		maxConns := int(cfg.MaxConns)
		if maxConns <= 0 {
			maxConns = 10
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
