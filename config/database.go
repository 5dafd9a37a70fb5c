package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"peer-delivery-api/logger"
	"peer-delivery-api/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenDB opens the SQLite store, creating its directory if absent, and migrates
// every model. SQLite has a single writer, so the pool holds one connection.
func OpenDB(cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage directory: %w", err)
			}
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.NewGormLogger(log, logger.ParseGormLevel(cfg.LogLevel), cfg.SlowThreshold),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database connected and migrated", zap.String("path", cfg.Path))
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Delivery{},
		&models.Earning{},
		&models.Rating{},
		&models.Notification{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// CloseDB releases the underlying connection pool
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
