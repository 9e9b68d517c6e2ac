// Package migrations holds the versioned schema for every relational store and applies it
// with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"taskboard/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

func newMigrate(dialect, driverName string, driver database.Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("migration source %s: %w", dialect, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	return m, nil
}

// Up applies every pending migration for dialect. The caller keeps ownership of driver and
// must close it when it holds a dedicated connection; the sqlite driver shares the store's
// *sql.DB and must stay open.
func Up(dialect, driverName string, driver database.Driver) error {
	m, err := newMigrate(dialect, driverName, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: schema is up to date", zap.String("dialect", dialect))
			return nil
		}
		logger.Error("Migrations: apply failed", err, zap.String("dialect", dialect))
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: applied", zap.String("dialect", dialect), zap.Uint("version", version))
	return nil
}

// Down rolls every migration back. Ownership of driver stays with the caller, as for Up.
func Down(dialect, driverName string, driver database.Driver) error {
	m, err := newMigrate(dialect, driverName, driver)
	if err != nil {
		return err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: rollback failed", err, zap.String("dialect", dialect))
		return fmt.Errorf("rollback migrations: %w", err)
	}

	logger.Info("Migrations: rolled back", zap.String("dialect", dialect))
	return nil
}
