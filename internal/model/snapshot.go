package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one materialized row of portfolio-level aggregates,
// captured once per day by the snapshot scheduler and before a
// year-end close.
type Snapshot struct {
	ID               string          `json:"id"`
	SnapshotDate     string          `json:"snapshotDate"`
	TotalInvestment  decimal.Decimal `json:"totalInvestment"`
	TotalRealizedPL  decimal.Decimal `json:"totalRealizedPl"`
	TotalDividends   decimal.Decimal `json:"totalDividends"`
	OpenLotCount     int             `json:"openLotCount"`
	ClosedTradeCount int             `json:"closedTradeCount"`
	CreatedAt        time.Time       `json:"createdAt"`
}
