package main

import (
	"encoding/json"
	"flag"
	stdlog "log"
	"os"

	"github.com/patrickmn/go-cache"
	"github.com/username/cargodocs/backend/src/config"
	"github.com/username/cargodocs/backend/src/database"
	"github.com/username/cargodocs/backend/src/logger"
	"github.com/username/cargodocs/backend/src/services"
	"github.com/username/cargodocs/backend/src/validation"
)

func main() {
	batchID := flag.String("batch", "", "batch id to operate on")
	readinessOnly := flag.Bool("readiness", false, "only check review readiness, do not validate")
	flag.Parse()

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Cargodocs validation runner starting...")

	if *batchID == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services...")
	emailService := services.NewEmailService()
	notifier := services.NewNotifier(emailService, config.Cfg.ValidationNotifyEmail, config.Cfg.NotifyMinInterval)
	engine := validation.NewEngine(validation.DefaultCatalog())
	validationService := services.NewValidationService(
		engine, config.Cfg.ReviewConfidenceThreshold, reportCache, notifier,
	)

	if *readinessOnly {
		report, err := validationService.CheckReadiness(*batchID)
		if err != nil {
			logger.L.Error("Readiness check failed", "batchID", *batchID, "error", err)
			stdlog.Fatalf("Readiness check failed: %v", err)
		}
		printJSON(report)
		if !report.Ready {
			os.Exit(1)
		}
		return
	}

	report, err := validationService.ValidateBatch(*batchID)
	if err != nil {
		logger.L.Error("Validation failed", "batchID", *batchID, "error", err)
		stdlog.Fatalf("Validation failed: %v", err)
	}
	printJSON(report)
	if report.ErrorCount > 0 {
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.L.Error("Failed to encode output", "error", err)
	}
}
