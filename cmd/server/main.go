package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/lotfolio/lotfolio/internal/api"
	"github.com/lotfolio/lotfolio/internal/config"
	"github.com/lotfolio/lotfolio/internal/database"
	"github.com/lotfolio/lotfolio/internal/repository"
	"github.com/lotfolio/lotfolio/internal/scheduler"
	"github.com/lotfolio/lotfolio/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Analysis cache shared by the ledger and portfolio services so
	// ledger mutations invalidate cached analysis results.
	analysisCache := cache.New(15*time.Minute, 30*time.Minute)

	// Create services
	systemService := service.NewSystemService(db)
	snapshotService := service.NewSnapshotService(transactionRepo, snapshotRepo)
	ledgerService := service.NewLedgerService(transactionRepo, analysisCache)
	portfolioService := service.NewPortfolioService(
		transactionRepo,
		snapshotService,
		analysisCache,
	)

	// Create router
	router := api.NewRouter(systemService, portfolioService, ledgerService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Daily snapshot scheduler
	snapshotScheduler, err := scheduler.New(cfg.Snapshot.Schedule, snapshotService)
	if err != nil {
		log.Fatalf("Failed to create snapshot scheduler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		snapshotScheduler.Start()
		log.Printf("Snapshot scheduler running with schedule %q", cfg.Snapshot.Schedule)

		<-gctx.Done()

		log.Println("Shutting down server...")

		// Let an in-flight snapshot job finish before closing the database
		<-snapshotScheduler.Stop().Done()

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	log.Println("Server exited")
}
