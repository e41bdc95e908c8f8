package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lotfolio/lotfolio/internal/analysis"
	"github.com/lotfolio/lotfolio/internal/model"
	"github.com/lotfolio/lotfolio/internal/repository"
)

// analysisCacheKey is the shared cache entry for the stored ledger's
// analysis. Any ledger mutation deletes it.
const analysisCacheKey = "ledger-analysis"

// PortfolioService runs the lot analysis over transaction logs: ad-hoc
// uploads, the stored ledger (cached), and the year-end close.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository
	snapshotService *SnapshotService
	analysisCache   *cache.Cache
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	snapshotService *SnapshotService,
	analysisCache *cache.Cache,
) *PortfolioService {
	return &PortfolioService{
		transactionRepo: transactionRepo,
		snapshotService: snapshotService,
		analysisCache:   analysisCache,
	}
}

// AnalyzeTransactions runs the analyzer over a caller-supplied log,
// e.g. an uploaded file. Stateless; nothing is stored or cached.
func (s *PortfolioService) AnalyzeTransactions(transactions []model.Transaction) analysis.Result {
	return analysis.Analyze(transactions)
}

// AnalyzeLedger analyzes the stored ledger. Results are cached until
// the ledger is mutated or the cache entry expires.
func (s *PortfolioService) AnalyzeLedger() (analysis.Result, int, error) {
	if cached, found := s.analysisCache.Get(analysisCacheKey); found {
		entry := cached.(cachedAnalysis)
		return entry.result, entry.transactionCount, nil
	}

	transactions, err := s.transactionRepo.ListTransactions()
	if err != nil {
		return analysis.Result{}, 0, err
	}

	result := analysis.Analyze(transactions)
	s.analysisCache.Set(analysisCacheKey, cachedAnalysis{
		result:           result,
		transactionCount: len(transactions),
	}, cache.DefaultExpiration)

	return result, len(transactions), nil
}

// CloseYear rolls the ledger forward: a snapshot of the closing state
// is captured first, then every open lot becomes a synthetic BUY dated
// today and the stored ledger is replaced with those BUYs.
func (s *PortfolioService) CloseYear(ctx context.Context) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListTransactions()
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")

	// The year's final aggregates must survive the ledger reset.
	if _, err := s.snapshotService.Capture(ctx, today); err != nil {
		return nil, fmt.Errorf("failed to capture closing snapshot: %w", err)
	}

	next := analysis.RollForward(transactions, today)
	for i := range next {
		next[i].ID = uuid.New().String()
	}

	if err := s.transactionRepo.ReplaceAll(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to roll ledger forward: %w", err)
	}

	s.analysisCache.Delete(analysisCacheKey)
	return next, nil
}

// LatestSnapshot returns the most recent materialized aggregates.
func (s *PortfolioService) LatestSnapshot() (model.Snapshot, error) {
	return s.snapshotService.Latest()
}

type cachedAnalysis struct {
	result           analysis.Result
	transactionCount int
}
