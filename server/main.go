package main

import (
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/airtable"
	"github.com/artifig/tehnopal/internal/cache"
	"github.com/artifig/tehnopal/internal/config"
	"github.com/artifig/tehnopal/internal/handlers"
	logger "github.com/artifig/tehnopal/internal/logging"
	"github.com/artifig/tehnopal/internal/models"
	"github.com/artifig/tehnopal/internal/router"
	"github.com/artifig/tehnopal/internal/scoring"
	"github.com/artifig/tehnopal/internal/services"
	"github.com/artifig/tehnopal/internal/store"
)

func main() {
	// Initialize Logger with defaults first so config loading can log.
	log, err := logger.Init("logs", logger.DefaultRotation)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize configuration
	if err := config.Init("..", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Re-initialize the logger with the configured rotation settings.
	log, err = logger.Init(config.Conf.Logging.Directory, logger.Rotation{
		MaxSize:    config.Conf.Logging.MaxSize,
		MaxBackups: config.Conf.Logging.MaxBackups,
		MaxAge:     config.Conf.Logging.MaxAge,
		Compress:   config.Conf.Logging.Compress,
	})
	if err != nil {
		panic("failed to reinitialize logger: " + err.Error())
	}
	defer log.Sync()

	// Load the company type slug mapping at startup
	mapping, err := models.LoadCompanyTypeMapping(config.Conf.Airtable.MappingFile)
	if err != nil {
		log.Fatal("Failed to load company type mapping", zap.Error(err))
	}

	// Open the local answer cache
	db, err := cache.Open(config.Conf.Cache.Path, log)
	if err != nil {
		log.Fatal("Failed to open answer cache", zap.Error(err))
	}
	progress := cache.NewProgress(cache.NewGormKV(db), log)

	// Record store
	client := airtable.New(config.Conf.Airtable.APIKey, config.Conf.Airtable.BaseID, log)
	st := store.New(client, log)

	syncer := cache.NewSyncer(progress, st, log)
	builder := scoring.NewBuilder(st, log)
	export := services.NewExportService(log, config.Conf.Export.PDFEndpoint, config.Conf.Export.EmailEndpoint)

	// Start the background answer sync
	scheduler := services.NewSyncScheduler(log, progress, syncer, config.Conf.Sync.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router, passing the logger to it
	r := router.Setup(log, router.Deps{
		Assessment: handlers.NewAssessmentHandler(log, st, progress, syncer, mapping),
		Reference:  handlers.NewReferenceHandler(log, st),
		Results:    handlers.NewResultsHandler(log, st, builder),
		Export:     handlers.NewExportHandler(log, export),
	})

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
