package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies every pending migration.
func MigrateUp(dsn string, log *logger.Logger) error {
	return runMigrations(dsn, log, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back the given number of migrations. steps <= 0 rolls back all of them.
func MigrateDown(dsn string, steps int, log *logger.Logger) error {
	return runMigrations(dsn, log, func(m *migrate.Migrate) error {
		if steps <= 0 {
			return m.Down()
		}
		return m.Steps(-steps)
	})
}

// MigrationVersion reports the current schema version and whether it is dirty.
func MigrationVersion(dsn string) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := runMigrations(dsn, logger.Nop(), func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

func runMigrations(dsn string, log *logger.Logger, fn func(*migrate.Migrate) error) error {
	// A separate connection keeps the migration lock off the service pool
	migrateDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := postgres.WithInstance(migrateDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := fn(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug().Msg("schema already up to date")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("migrations applied")
	return nil
}
