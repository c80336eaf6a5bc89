// Package migrations applies the embedded schema migrations with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// Source returns the migration source for a database driver name.
func Source(driverName string) (source.Driver, error) {
	dir, err := dirFor(driverName)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dir, err)
	}
	return src, nil
}

// Up applies every pending migration to db. An already current schema is not an error.
func Up(db *sql.DB, driverName string) error {
	dir, err := dirFor(driverName)
	if err != nil {
		return err
	}

	var target database.Driver
	switch dir {
	case "postgres":
		target, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	default:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := Source(driverName)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func dirFor(driverName string) (string, error) {
	switch driverName {
	case "postgres", "postgresql", "pgx":
		return "postgres", nil
	case "mysql", "tidb":
		return "mysql", nil
	default:
		return "", fmt.Errorf("no migrations for database driver %q", driverName)
	}
}
