// Package analysis implements lot-based cost-basis matching over a flat
// transaction ledger. Sells, dividends and cash returns are matched to
// the specific purchase lot the user named, never FIFO/LIFO.
package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/model"
)

// Result is the output of one analysis run: the two derived views plus
// the portfolio-level aggregates.
type Result struct {
	OpenLots        []model.OpenLot     `json:"open_lots"`
	ClosedTrades    []model.ClosedTrade `json:"closed_trades"`
	TotalInvestment decimal.Decimal     `json:"total_investment"`
	TotalRealizedPL decimal.Decimal     `json:"total_realized_pl"`
	TotalDividends  decimal.Decimal     `json:"total_dividends"`
}

// Analyze reconstructs position state from the transaction log.
//
// The function is pure: it works on its own copies and never mutates
// the caller's slice, so the same input always yields the same output.
// Malformed references (a sell or dividend naming an unknown lot, a
// sell against an exhausted lot) are skipped rather than reported;
// one bad row must not prevent analyzing the rest of the portfolio.
//
// Dates are compared lexicographically, so callers must supply ISO
// YYYY-MM-DD strings for correct ordering.
func Analyze(transactions []model.Transaction) Result {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	// Working pool of BUY lots keyed by lot id. Volumes here are
	// decremented during matching; the entries are private copies.
	pool := make(map[string]*model.Transaction)
	for _, tx := range sorted {
		if tx.IsType(model.TypeBuy) && tx.LotID != "" {
			working := tx
			pool[tx.LotID] = &working
		}
	}

	// Total investment comes from the original input, independent of
	// how matching consumes the lots.
	totalInvestment := decimal.Zero
	for _, tx := range transactions {
		if tx.IsType(model.TypeBuy) {
			totalInvestment = totalInvestment.Add(tx.EffectiveAmount())
		}
	}

	// Dividends and cash returns accumulate against the lot they name.
	// Entries with no target lot contribute to nothing.
	dividendsByLot := make(map[string]decimal.Decimal)
	totalDividends := decimal.Zero
	for _, tx := range sorted {
		if !tx.IsType(model.TypeDividend) && !tx.IsType(model.TypeCashReturn) {
			continue
		}
		if tx.LotID == "" {
			continue
		}
		amount := tx.EffectiveAmount()
		dividendsByLot[tx.LotID] = dividendsByLot[tx.LotID].Add(amount)
		totalDividends = totalDividends.Add(amount)
	}

	var trades []model.ClosedTrade
	tradesByLot := make(map[string][]int)
	cumulativePL := make(map[string]decimal.Decimal)

	for _, sell := range sorted {
		if !sell.IsType(model.TypeSell) || sell.LotID == "" {
			continue
		}
		lot, ok := pool[sell.LotID]
		if !ok {
			continue
		}
		if lot.Volume <= 0 {
			// Lot already closed. Skipping here also guards the
			// cost-per-share division below.
			continue
		}

		// A sell may never take a lot below zero; excess recorded
		// volume is capped silently.
		volumeToSell := min(sell.Volume, lot.Volume)

		// Cost basis of the sold portion, from the lot's current
		// remaining amount and volume at this point in processing.
		costPerShare := lot.EffectiveAmount().Div(decimal.NewFromInt(lot.Volume))
		moneyIn := costPerShare.Mul(decimal.NewFromInt(volumeToSell))
		moneyOut := sell.EffectiveAmount()
		realizedPL := moneyOut.Sub(moneyIn)

		cumulativePL[lot.Symbol] = cumulativePL[lot.Symbol].Add(realizedPL)

		// Shrink the lot before recording the remaining volume.
		lot.Volume -= volumeToSell

		trades = append(trades, model.ClosedTrade{
			Symbol:                  lot.Symbol,
			BuyDate:                 lot.Date,
			SellDate:                sell.Date,
			VolumeSold:              volumeToSell,
			MoneyIn:                 moneyIn,
			MoneyOut:                moneyOut,
			RealizedPL:              realizedPL,
			CumulativePLForSymbol:   cumulativePL[lot.Symbol],
			LotID:                   sell.LotID,
			BuyPricePerShare:        lot.PricePerUnit,
			BuyCostPerShare:         costPerShare,
			SellPricePerShare:       sell.PricePerUnit,
			RemainingInLotAfterSale: lot.Volume,
			IsLotFullySold:          lot.Volume == 0,
		})
		tradesByLot[sell.LotID] = append(tradesByLot[sell.LotID], len(trades)-1)

		// Once a lot is depleted, every earlier trade against it is
		// retroactively marked fully sold as well.
		if lot.Volume == 0 {
			for _, i := range tradesByLot[sell.LotID] {
				trades[i].IsLotFullySold = true
			}
		}
	}

	// Open lots are re-expressed against the original BUY: original
	// volume from the untouched input, and a total cost that is the
	// proportional share of the original cost basis.
	originalBuys := make(map[string]model.Transaction)
	for _, tx := range transactions {
		if tx.IsType(model.TypeBuy) && tx.LotID != "" {
			originalBuys[tx.LotID] = tx
		}
	}

	var openLots []model.OpenLot
	for lotID, lot := range pool {
		if lot.Volume <= 0 {
			continue
		}
		orig := originalBuys[lotID]
		totalCost := decimal.Zero
		if orig.Volume > 0 {
			totalCost = orig.EffectiveAmount().
				Div(decimal.NewFromInt(orig.Volume)).
				Mul(decimal.NewFromInt(lot.Volume))
		}
		openLots = append(openLots, model.OpenLot{
			Symbol:            lot.Symbol,
			BuyDate:           lot.Date,
			OriginalVolume:    orig.Volume,
			RemainingVolume:   lot.Volume,
			BuyPrice:          lot.PricePerUnit,
			TotalCost:         totalCost,
			LotID:             lotID,
			DividendsReceived: dividendsByLot[lotID],
		})
	}
	sort.SliceStable(openLots, func(i, j int) bool {
		return openLots[i].BuyDate < openLots[j].BuyDate
	})
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].SellDate < trades[j].SellDate
	})

	totalRealizedPL := decimal.Zero
	for _, trade := range trades {
		totalRealizedPL = totalRealizedPL.Add(trade.RealizedPL)
	}

	return Result{
		OpenLots:        openLots,
		ClosedTrades:    trades,
		TotalInvestment: totalInvestment,
		TotalRealizedPL: totalRealizedPL,
		TotalDividends:  totalDividends,
	}
}

// Symbols returns the distinct symbols still held in open lots, sorted.
func (r Result) Symbols() []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, lot := range r.OpenLots {
		if !seen[lot.Symbol] {
			seen[lot.Symbol] = true
			symbols = append(symbols, lot.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// Response shapes the result for API consumers.
func (r Result) Response(transactionCount int) model.AnalysisResponse {
	openLots := r.OpenLots
	if openLots == nil {
		openLots = []model.OpenLot{}
	}
	trades := r.ClosedTrades
	if trades == nil {
		trades = []model.ClosedTrade{}
	}
	symbols := r.Symbols()
	if symbols == nil {
		symbols = []string{}
	}
	return model.AnalysisResponse{
		TotalInvestment:  r.TotalInvestment,
		TotalRealizedPL:  r.TotalRealizedPL,
		TotalDividends:   r.TotalDividends,
		TransactionCount: transactionCount,
		OpenLots:         openLots,
		ClosedTrades:     trades,
		AllSymbols:       symbols,
	}
}
