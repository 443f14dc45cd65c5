// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"learnease_backend/internal/config"
	"learnease_backend/internal/help"
	"learnease_backend/internal/platform/database"
	platformElasticsearch "learnease_backend/internal/platform/elasticsearch"
	"learnease_backend/internal/platform/logger"
)

func main() {
	syncArticlesCmd := flag.NewFlagSet("sync-help-articles", flag.ExitOnError)

	if len(os.Args) > 1 && os.Args[1] == "sync-help-articles" {
		syncArticlesCmd.Parse(os.Args[2:])
		runHelpArticleSync()
		return
	}

	startServer()
}

// runHelpArticleSync rebuilds the help-article search index from the database.
func runHelpArticleSync() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}
	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if err := platformElasticsearch.CreateHelpArticlesIndexIfNotExists(esClient, appLogger); err != nil {
		appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
	}

	helpService := help.NewService(help.NewRepository(db), esClient, appLogger)
	indexed, err := helpService.ReindexAll(context.Background())
	if err != nil {
		appLogger.Fatal("FATAL: Help article synchronization failed", zap.Error(err))
	}
	appLogger.Info("Help article synchronization completed successfully.", zap.Int("indexed", indexed))
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		if err := platformElasticsearch.CreateHelpArticlesIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch help articles index. Search will use the database fallback.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	}
	log.Println("INFO: Server shutdown complete.")
}
