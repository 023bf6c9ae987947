package database

import (
	"database/sql"
	"fmt"
	"time"

	"prep_tracker/internal/platform/config"
	"prep_tracker/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a pgx-backed pool and hands it to gorm.
func Connect(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	gormLog, err := logger.NewGormLogger(log, cfg.GormLogLevel)
	if err != nil {
		log.Warn("invalid GORM_LOG_LEVEL, using warn", "error", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: gormLog})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error initializing gorm: %w", err)
	}

	log.Info("connected to PostgreSQL", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
