package db

import (
	"embed"
	"errors"
	"fmt"

	"family-finance-go/internal/config"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; SQLite schemas are managed by AutoMigrate.
func Migrate(gormDB *gorm.DB) error {
	if gormDB.Dialector.Name() != config.DriverPostgres {
		return AutoMigrate(gormDB)
	}

	m, err := newMigrator(gormDB)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// MigrateDown reverts the last steps migrations on postgres.
func MigrateDown(gormDB *gorm.DB, steps int) error {
	if gormDB.Dialector.Name() != config.DriverPostgres {
		return fmt.Errorf("down migrations are only supported on postgres")
	}
	if steps <= 0 {
		steps = 1
	}

	m, err := newMigrator(gormDB)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revert migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(gormDB *gorm.DB) (uint, bool, error) {
	if gormDB.Dialector.Name() != config.DriverPostgres {
		return 0, false, nil
	}
	m, err := newMigrator(gormDB)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// newMigrator shares the gorm connection pool; closing the returned migrator
// would close it, so callers never do.
func newMigrator(gormDB *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, config.DriverPostgres, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}
