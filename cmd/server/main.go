package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingflow/internal/auth"
	"bookingflow/internal/config"
	"bookingflow/internal/email/noop"
	"bookingflow/internal/email/ses"
	"bookingflow/internal/extractor"
	"bookingflow/internal/extractor/claude"
	"bookingflow/internal/handler"
	"bookingflow/internal/pdf"
	"bookingflow/internal/port"
	"bookingflow/internal/repository/postgres"
	"bookingflow/internal/router"
	"bookingflow/internal/service"
	s3storage "bookingflow/internal/storage/s3"
)

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
	jobRepo := postgres.NewJobRepo(db)
	bookingRepo := postgres.NewBookingRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewObjectStore(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction
	analyzer := extractor.WithRetry(claude.NewAnalyzer(&cfg.Extractor), cfg.Extractor.MaxRetries)
	splitter := pdf.NewSplitter()

	// Initialize email
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.PortalURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	ingestSvc := service.NewIngestService(jobRepo, bookingRepo, s3Client, splitter, analyzer, emailSender, &cfg.S3, &cfg.Ingest)
	bookingSvc := service.NewBookingService(bookingRepo, jobRepo, s3Client, &cfg.S3)

	// Initialize handlers
	verifier := auth.NewJWTVerifier(cfg.JWT)
	bookingH := handler.NewBookingHandler(ingestSvc, bookingSvc)
	jobH := handler.NewJobHandler(bookingSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, verifier, bookingH, jobH, healthH)

	// Start the background ingest worker. It claims queued jobs from the
	// database, so jobs left behind by a previous process are picked up too.
	worker := service.NewIngestWorker(jobRepo, ingestSvc, service.IngestWorkerConfig{
		PollInterval:   time.Duration(cfg.Ingest.PollIntervalSecs) * time.Second,
		JobConcurrency: cfg.Ingest.JobConcurrency,
	})
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(workerCtx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		stopWorker()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	// Stop claiming new jobs and wait for in-flight ones to finish.
	stopWorker()
	<-workerDone

	log.Printf("shutdown complete")
	return nil
}
