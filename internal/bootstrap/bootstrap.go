// Package bootstrap opens the shared resources both binaries start from.
package bootstrap

import (
	"fmt"

	"go-inventory-api/internal/config"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/database"
	"go-inventory-api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Logger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
}

// Database connects to the configured store and migrates the schema.
func Database(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN(),
	})
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close releases the database handle.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
