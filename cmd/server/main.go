package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/newbi-app/facturx/internal/config"
	"github.com/newbi-app/facturx/internal/export"
	"github.com/newbi-app/facturx/internal/facturx"
	"github.com/newbi-app/facturx/internal/pdf"
	"github.com/newbi-app/facturx/internal/repository"
	"github.com/newbi-app/facturx/internal/server"
	"github.com/newbi-app/facturx/internal/service"
	"github.com/newbi-app/facturx/internal/storage"
	"github.com/newbi-app/facturx/pkg/database"
	"github.com/newbi-app/facturx/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// Local overrides from .env, ignored when absent.
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Factur-X generation service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	fileStorage := storage.NewLocalFileStorage(cfg.Storage.OutputDir, logger)
	folderManager := storage.NewFolderManager(cfg.Storage.OutputDir, logger)

	builder := facturx.NewBuilder(logger)
	validator := facturx.NewValidator(logger)
	embedder := pdf.NewEmbedder(builder, logger)
	exporter := export.NewExcelExporter(logger)

	generationService := service.NewGenerationService(
		validator,
		builder,
		embedder,
		fileStorage,
		folderManager,
		documentRepo,
		logger,
	)

	handlers := server.NewHandlers(generationService, documentRepo, exporter, logger)
	srv := server.NewServer(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
