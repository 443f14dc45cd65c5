// File: cmd/server/providers.go
package main

import (
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnease_backend/internal/config"
	"learnease_backend/internal/platform/database"
	platformElasticsearch "learnease_backend/internal/platform/elasticsearch"
)

// provideDatabase opens the GORM connection and runs schema migration.
func provideDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// provideESClient initializes the Elasticsearch client. A missing or
// unreachable cluster is not fatal: help-center search degrades to the
// database fallback.
func provideESClient(cfg *config.Config, logger *zap.Logger) *platformElasticsearch.ESClientWrapper {
	client, err := platformElasticsearch.NewClient(cfg, logger)
	if err != nil {
		logger.Warn("Elasticsearch unavailable; help-center search will use the database fallback", zap.Error(err))
		return nil
	}
	return client
}

// provideCleanup builds the teardown function returned by the injector.
func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
