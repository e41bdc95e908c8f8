package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/lotfolio/lotfolio/internal/api/handlers"
	custommiddleware "github.com/lotfolio/lotfolio/internal/api/middleware"
	"github.com/lotfolio/lotfolio/internal/config"
	"github.com/lotfolio/lotfolio/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	ledgerService *service.LedgerService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.NewRateLimiter(rate.NewLimiter(rate.Every(100*time.Millisecond), 30)))

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			r.Post("/analyze", portfolioHandler.AnalyzeUpload)
			r.Get("/analysis", portfolioHandler.LedgerAnalysis)
			r.Get("/snapshot", portfolioHandler.LatestSnapshot)
			r.With(custommiddleware.APIKeyMiddleware).Post("/close-year", portfolioHandler.CloseYear)
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(ledgerService)
			r.Get("/", transactionHandler.AllTransactions)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", transactionHandler.CreateTransaction)
			r.With(custommiddleware.APIKeyMiddleware).Post("/import", transactionHandler.ImportCSV)
			r.With(custommiddleware.APIKeyMiddleware).Post("/fix-dates", transactionHandler.FixDates)
		})
	})

	return r
}
