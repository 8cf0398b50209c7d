package cli

import (
	"fmt"

	"family-finance-go/internal/config"
	"family-finance-go/internal/db"
	"family-finance-go/pkg/logger"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	Down int
}

func NewMigrateCommand(log logger.Logger) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded SQL migrations to the configured PostgreSQL database.

With --down N the last N migrations are rolled back instead. The sqlite
driver is migrated from the model definitions when it is opened.

Example:
  family-finance migrate
  family-finance migrate --down 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts, log)
		},
	}

	cmd.Flags().IntVar(&opts.Down, "down", 0, "number of migrations to roll back")

	return cmd
}

func runMigrate(cmd *cobra.Command, opts *migrateOptions, log logger.Logger) error {
	if opts.Down < 0 {
		return fmt.Errorf("--down must not be negative")
	}

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if cfg.DB.Driver == config.DriverSQLite {
		fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is up to date")
		return nil
	}

	if opts.Down > 0 {
		if err := db.MigrateDown(gormDB, opts.Down); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	} else if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	version, dirty, err := db.MigrationVersion(gormDB)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	log.Info("db: migrations applied", "version", version, "dirty", dirty)
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%v)\n", version, dirty)
	return nil
}
