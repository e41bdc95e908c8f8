package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lotfolio/lotfolio/internal/analysis"
	"github.com/lotfolio/lotfolio/internal/model"
	"github.com/lotfolio/lotfolio/internal/repository"
)

// SnapshotService materializes portfolio-level aggregates into the
// analysis_snapshot table. It recomputes the analysis directly from
// the ledger rather than going through the cached path, so a snapshot
// always reflects the stored data.
type SnapshotService struct {
	transactionRepo *repository.TransactionRepository
	snapshotRepo    *repository.SnapshotRepository
}

// NewSnapshotService creates a new SnapshotService with the provided repository dependencies.
func NewSnapshotService(
	transactionRepo *repository.TransactionRepository,
	snapshotRepo *repository.SnapshotRepository,
) *SnapshotService {
	return &SnapshotService{
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
	}
}

// CaptureToday captures a snapshot dated today. Invoked by the cron
// scheduler.
func (s *SnapshotService) CaptureToday(ctx context.Context) (model.Snapshot, error) {
	return s.Capture(ctx, time.Now().Format("2006-01-02"))
}

// Capture analyzes the stored ledger and upserts the aggregates for
// the given date.
func (s *SnapshotService) Capture(ctx context.Context, date string) (model.Snapshot, error) {
	transactions, err := s.transactionRepo.ListTransactions()
	if err != nil {
		return model.Snapshot{}, err
	}

	result := analysis.Analyze(transactions)

	snapshot := model.Snapshot{
		ID:               uuid.New().String(),
		SnapshotDate:     date,
		TotalInvestment:  result.TotalInvestment,
		TotalRealizedPL:  result.TotalRealizedPL,
		TotalDividends:   result.TotalDividends,
		OpenLotCount:     len(result.OpenLots),
		ClosedTradeCount: len(result.ClosedTrades),
	}

	if err := s.snapshotRepo.UpsertSnapshot(ctx, &snapshot); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	return snapshot, nil
}

// Latest returns the most recent captured snapshot.
func (s *SnapshotService) Latest() (model.Snapshot, error) {
	return s.snapshotRepo.LatestSnapshot()
}
