package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"theka/internal/config"
	"theka/internal/email/noop"
	"theka/internal/email/ses"
	"theka/internal/handler"
	"theka/internal/pdftext"
	"theka/internal/port"
	"theka/internal/repository/postgres"
	"theka/internal/router"
	"theka/internal/service"
	s3storage "theka/internal/storage/s3"
)

// @title THEKA ICDC API
// @version 1.0
// @description ICDC stock receipt ingestion and extraction service for excise retail invoices.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	fileRepo := postgres.NewFileMetaRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	itemRepo := postgres.NewInvoiceItemRepo(db)
	matchRepo := postgres.NewBrandMatchRepo(db)
	brandRepo := postgres.NewMasterBrandRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize review notifier
	var notifier port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ToAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		notifier = noop.NewNoopSender()
	}

	// Initialize services
	extractor := pdftext.NewExtractor(&cfg.Extract)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	catalogSvc := service.NewCatalogService(brandRepo)
	invoiceSvc := service.NewInvoiceService(
		invoiceRepo, itemRepo, matchRepo,
		fileSvc, catalogSvc, extractor, s3Client, notifier,
		cfg.Parse.SizeToleranceML,
	)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	brandH := handler.NewBrandHandler(catalogSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(invoiceH, brandH, healthH, cfg.CORS.AllowedOrigins)

	// Start the parse queue worker; it drains in-flight parses on shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewParseQueueWorker(invoiceRepo, invoiceSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	go worker.Start(ctx)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
