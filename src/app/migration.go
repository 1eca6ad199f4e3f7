package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationURL turns the ledger DSN into the database URL golang-migrate expects
func migrationURL(driver, dsn string) string {
	if driver != DriverSQLite {
		return dsn
	}
	if strings.HasPrefix(dsn, "sqlite3://") {
		return dsn
	}
	return "sqlite3://" + strings.TrimPrefix(dsn, "file:")
}

func newMigration(driver, dsn, migrationPath string) (*migrate.Migrate, error) {
	migration, err := migrate.New(migrationPath, migrationURL(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate: %w", err)
	}
	return migration, nil
}

func closeMigration(migration *migrate.Migrate, err error) error {
	srcErr, dbErr := migration.Close()
	return errors.Join(err, srcErr, dbErr)
}

func MigrationUp(driver, dsn, migrationPath string) error {
	migration, err := newMigration(driver, dsn, migrationPath)
	if err != nil {
		return err
	}

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return closeMigration(migration, fmt.Errorf("failed to run migration up: %w", err))
	}
	return closeMigration(migration, nil)
}

func MigrationDown(driver, dsn, migrationPath string) error {
	migration, err := newMigration(driver, dsn, migrationPath)
	if err != nil {
		return err
	}

	if err := migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return closeMigration(migration, fmt.Errorf("failed to run migration down: %w", err))
	}
	return closeMigration(migration, nil)
}

// MigrationVersion reports the applied schema version. A database without
// migrations reports version 0.
func MigrationVersion(driver, dsn, migrationPath string) (uint, bool, error) {
	migration, err := newMigration(driver, dsn, migrationPath)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := migration.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, closeMigration(migration, nil)
	}
	return version, dirty, closeMigration(migration, err)
}
