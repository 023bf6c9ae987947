package database

import (
	"fmt"

	"prep_tracker/internal/platform/config"
	"prep_tracker/internal/platform/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a single-file database for local runs without Postgres.
func ConnectSQLite(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormLog, err := logger.NewGormLogger(log, cfg.GormLogLevel)
	if err != nil {
		log.Warn("invalid GORM_LOG_LEVEL, using warn", "error", err)
	}
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}

	// sqlite allows a single writer.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("opened SQLite database", "path", cfg.SQLitePath)
	return db, nil
}
