package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/apperrors"
	"github.com/lotfolio/lotfolio/internal/model"
)

// SnapshotRepository provides data access methods for the
// analysis_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertSnapshot writes the aggregates for a date, overwriting any
// snapshot already captured for that date.
func (r *SnapshotRepository) UpsertSnapshot(ctx context.Context, s *model.Snapshot) error {
	query := `
		INSERT INTO analysis_snapshot
			(id, snapshot_date, total_investment, total_realized_pl, total_dividends, open_lot_count, closed_trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_date) DO UPDATE SET
			total_investment = excluded.total_investment,
			total_realized_pl = excluded.total_realized_pl,
			total_dividends = excluded.total_dividends,
			open_lot_count = excluded.open_lot_count,
			closed_trade_count = excluded.closed_trade_count,
			created_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.SnapshotDate,
		s.TotalInvestment.String(),
		s.TotalRealizedPL.String(),
		s.TotalDividends.String(),
		s.OpenLotCount,
		s.ClosedTradeCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot by date.
// Returns apperrors.ErrSnapshotNotFound when none has been captured.
func (r *SnapshotRepository) LatestSnapshot() (model.Snapshot, error) {
	query := `
		SELECT id, snapshot_date, total_investment, total_realized_pl, total_dividends, open_lot_count, closed_trade_count, created_at
		FROM analysis_snapshot
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	var s model.Snapshot
	var investmentStr, realizedStr, dividendsStr, createdAtStr string

	err := r.db.QueryRow(query).Scan(
		&s.ID,
		&s.SnapshotDate,
		&investmentStr,
		&realizedStr,
		&dividendsStr,
		&s.OpenLotCount,
		&s.ClosedTradeCount,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Snapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to scan analysis_snapshot results: %w", err)
	}

	if s.TotalInvestment, err = decimal.NewFromString(investmentStr); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse total_investment: %w", err)
	}
	if s.TotalRealizedPL, err = decimal.NewFromString(realizedStr); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse total_realized_pl: %w", err)
	}
	if s.TotalDividends, err = decimal.NewFromString(dividendsStr); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse total_dividends: %w", err)
	}
	if s.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return s, nil
}

// parseTimestamp reads the DATETIME text sqlite stores for
// CURRENT_TIMESTAMP defaults, with RFC3339 as a fallback.
func parseTimestamp(str string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02 15:04:05", str)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}
	return ts.UTC(), nil
}
