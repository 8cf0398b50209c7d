package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	familydomain "family-finance-go/internal/domain/family"
	goalsdomain "family-finance-go/internal/domain/goals"
	notificationsdomain "family-finance-go/internal/domain/notifications"
	txdomain "family-finance-go/internal/domain/transactions"
	userdomain "family-finance-go/internal/domain/user"
	"family-finance-go/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// NewSQLite opens a SQLite database for local runs and tests. The schema is
// created with AutoMigrate instead of the SQL migrations, which target
// postgres.
func NewSQLite(path string, log logger.Logger) (*gorm.DB, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	// One connection keeps writes serialised and an in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := gormDB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if path != MemoryDSN {
		if err := gormDB.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if err := AutoMigrate(gormDB); err != nil {
		return nil, err
	}

	log.Info("db: connected", "driver", "sqlite", "path", path)
	return gormDB, nil
}

// AutoMigrate creates or updates every table from the gorm models.
func AutoMigrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&userdomain.User{},
		&familydomain.Family{},
		&familydomain.FamilyMember{},
		&txdomain.Transaction{},
		&goalsdomain.Goal{},
		&goalsdomain.GoalParticipant{},
		&goalsdomain.Contribution{},
		&notificationsdomain.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
