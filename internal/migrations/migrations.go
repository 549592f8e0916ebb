// Package migrations applies the embedded schema for the configured dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

// Up brings the schema of db to the latest version. db stays open.
func Up(ctx context.Context, db *sql.DB, dialect string, logger *zap.Logger) error {
	logger = logger.With(zap.String("component", "migrations"), zap.String("dialect", dialect))

	source, err := iofs.New(migrationsFS, dialect)
	if err != nil {
		return fmt.Errorf("failed to load migrations for %q: %w", dialect, err)
	}
	defer source.Close()

	var (
		driver database.Driver
		conn   *sql.Conn
	)
	switch dialect {
	case "sqlite":
		// the sqlite driver's Close closes db, so it is never closed here
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case "postgres":
		conn, err = db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire connection: %w", err)
		}
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err == nil {
			defer driver.Close()
		} else {
			conn.Close()
		}
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if dirty {
		logger.Warn("schema is dirty, forcing version", zap.Uint("version", version))
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force schema version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema is up to date", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("schema migrated", zap.Uint("version", newVersion))

	return nil
}
