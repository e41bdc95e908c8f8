package model

import "github.com/shopspring/decimal"

// OpenLot is a purchase lot with shares still held. It is derived
// analysis output, never persisted.
//
// TotalCost is the proportional share of the lot's original cost basis
// for the remaining volume, independent of how partial sells were
// matched along the way.
type OpenLot struct {
	Symbol            string          `json:"symbol"`
	BuyDate           string          `json:"buy_date"`
	OriginalVolume    int64           `json:"original_volume"`
	RemainingVolume   int64           `json:"remaining_volume"`
	BuyPrice          decimal.Decimal `json:"buy_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	LotID             string          `json:"lot_id"`
	DividendsReceived decimal.Decimal `json:"dividends_received"`
}

// ClosedTrade records one SELL event matched against a lot. A lot sold
// off in several partial sells produces one ClosedTrade per sell, not
// one per lot.
//
// IsLotFullySold is true on every trade of a lot once that lot's
// remaining volume reaches zero, including trades emitted before the
// depleting sell.
type ClosedTrade struct {
	Symbol                  string          `json:"symbol"`
	BuyDate                 string          `json:"buy_date"`
	SellDate                string          `json:"sell_date"`
	VolumeSold              int64           `json:"volume_sold"`
	MoneyIn                 decimal.Decimal `json:"money_in"`
	MoneyOut                decimal.Decimal `json:"money_out"`
	RealizedPL              decimal.Decimal `json:"realized_pl"`
	CumulativePLForSymbol   decimal.Decimal `json:"cumulative_pl_for_symbol"`
	LotID                   string          `json:"lot_id"`
	BuyPricePerShare        decimal.Decimal `json:"buy_price_per_share"`
	BuyCostPerShare         decimal.Decimal `json:"buy_cost_per_share"`
	SellPricePerShare       decimal.Decimal `json:"sell_price_per_share"`
	RemainingInLotAfterSale int64           `json:"remaining_in_lot_after_sale"`
	IsLotFullySold          bool            `json:"is_lot_fully_sold"`
}

// AnalysisResponse is the API shape for an analysis run, enriched with
// the transaction count and the symbols still held.
type AnalysisResponse struct {
	TotalInvestment  decimal.Decimal `json:"total_investment"`
	TotalRealizedPL  decimal.Decimal `json:"total_realized_pl"`
	TotalDividends   decimal.Decimal `json:"total_dividends"`
	TransactionCount int             `json:"transaction_count"`
	OpenLots         []OpenLot       `json:"open_lots"`
	ClosedTrades     []ClosedTrade   `json:"closed_trades"`
	AllSymbols       []string        `json:"all_symbols"`
}
