package analysis

import "github.com/lotfolio/lotfolio/internal/model"

// RollForward performs a year-end close: every open lot collapses into
// a single synthetic BUY dated today, with TotalAmount pinned to the
// lot's recomputed cost so the carried-over basis survives the reset.
// Closed trades, dividends and the original buy history are dropped;
// the returned slice is the entire next-year ledger.
func RollForward(transactions []model.Transaction, today string) []model.Transaction {
	result := Analyze(transactions)

	next := make([]model.Transaction, 0, len(result.OpenLots))
	for _, lot := range result.OpenLots {
		cost := lot.TotalCost
		next = append(next, model.Transaction{
			Symbol:       lot.Symbol,
			Date:         today,
			Type:         model.TypeBuy,
			Volume:       lot.RemainingVolume,
			PricePerUnit: lot.BuyPrice,
			LotID:        lot.LotID,
			TotalAmount:  &cost,
		})
	}
	return next
}
