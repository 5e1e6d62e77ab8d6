// Package db opens the storage backend selected by configuration.
//
// PostgreSQL connections go through Connector, which parses URI, keyword/value
// and ADO.NET connection strings. SQLite DSNs are file paths.
package db

import (
	"context"
	"fmt"

	"github.com/jupaf/partidos/internal/db/postgres"
	"github.com/jupaf/partidos/internal/db/sqlite"
	"github.com/jupaf/partidos/pkg/partidos"
)

// ResolveDriver returns the effective driver for a DSN. A postgres:// or
// postgresql:// DSN always selects PostgreSQL.
func ResolveDriver(driver, dsn string) (string, error) {
	if IsPostgresDSN(dsn) {
		return partidos.DriverPostgres, nil
	}
	switch driver {
	case "":
		return partidos.DefaultDriver, nil
	case partidos.DriverSQLite, partidos.DriverPostgres:
		return driver, nil
	case "postgresql", "pg":
		return partidos.DriverPostgres, nil
	case "sqlite3":
		return partidos.DriverSQLite, nil
	default:
		return "", fmt.Errorf("driver %q: %w", driver, partidos.ErrUnsupportedDriver)
	}
}

// Open opens the Store described by cfg. The caller must Close it.
func Open(ctx context.Context, cfg *partidos.Config, logger partidos.Logger) (partidos.Store, error) {
	driver, err := ResolveDriver(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	switch driver {
	case partidos.DriverPostgres:
		logger.Verbose("Connecting to PostgreSQL")
		pool, err := NewConnector(cfg.DSN, func(msg string) {
			logger.Verbose("NOTICE: %s", msg)
		}).Connect(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	default:
		logger.Verbose("Opening SQLite database %s", cfg.DSN)
		return sqlite.Open(ctx, cfg.DSN)
	}
}
