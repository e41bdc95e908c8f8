package analysis_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/analysis"
	"github.com/lotfolio/lotfolio/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func buy(symbol, date, lotID string, volume int64, price, commission string) model.Transaction {
	return model.Transaction{
		Symbol:       symbol,
		Date:         date,
		Type:         model.TypeBuy,
		Volume:       volume,
		PricePerUnit: dec(price),
		Commission:   dec(commission),
		LotID:        lotID,
	}
}

func sell(symbol, date, lotID string, volume int64, price, commission string) model.Transaction {
	return model.Transaction{
		Symbol:       symbol,
		Date:         date,
		Type:         model.TypeSell,
		Volume:       volume,
		PricePerUnit: dec(price),
		Commission:   dec(commission),
		LotID:        lotID,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestAnalyzeSingleOpenLot(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 0 {
		t.Fatalf("Expected no closed trades, got %d", len(result.ClosedTrades))
	}
	if len(result.OpenLots) != 1 {
		t.Fatalf("Expected 1 open lot, got %d", len(result.OpenLots))
	}

	lot := result.OpenLots[0]
	if lot.LotID != "PTT-001" {
		t.Errorf("LotID = %s, want PTT-001", lot.LotID)
	}
	if lot.OriginalVolume != 100 || lot.RemainingVolume != 100 {
		t.Errorf("Volumes = %d/%d, want 100/100", lot.RemainingVolume, lot.OriginalVolume)
	}
	assertDecimal(t, "TotalCost", lot.TotalCost, "1005")
	assertDecimal(t, "TotalInvestment", result.TotalInvestment, "1005")
	assertDecimal(t, "TotalRealizedPL", result.TotalRealizedPL, "0")
}

func TestAnalyzeFullSell(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-06-15", "PTT-001", 100, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.OpenLots) != 0 {
		t.Fatalf("Expected no open lots, got %d", len(result.OpenLots))
	}
	if len(result.ClosedTrades) != 1 {
		t.Fatalf("Expected 1 closed trade, got %d", len(result.ClosedTrades))
	}

	trade := result.ClosedTrades[0]
	assertDecimal(t, "MoneyIn", trade.MoneyIn, "1005")
	assertDecimal(t, "MoneyOut", trade.MoneyOut, "1195")
	assertDecimal(t, "RealizedPL", trade.RealizedPL, "190")
	assertDecimal(t, "CumulativePLForSymbol", trade.CumulativePLForSymbol, "190")
	if !trade.IsLotFullySold {
		t.Error("Expected lot to be marked fully sold")
	}
	if trade.RemainingInLotAfterSale != 0 {
		t.Errorf("RemainingInLotAfterSale = %d, want 0", trade.RemainingInLotAfterSale)
	}
	if trade.BuyDate != "2024-01-15" || trade.SellDate != "2024-06-15" {
		t.Errorf("Dates = %s/%s", trade.BuyDate, trade.SellDate)
	}

	// Selling never changes what was invested
	assertDecimal(t, "TotalInvestment", result.TotalInvestment, "1005")
	assertDecimal(t, "TotalRealizedPL", result.TotalRealizedPL, "190")
}

func TestAnalyzePartialSells(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-03-01", "PTT-001", 50, "12.00", "5.00"),
		sell("PTT", "2024-06-01", "PTT-001", 50, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.OpenLots) != 0 {
		t.Fatalf("Expected no open lots, got %d", len(result.OpenLots))
	}
	if len(result.ClosedTrades) != 2 {
		t.Fatalf("Expected 2 closed trades, got %d", len(result.ClosedTrades))
	}

	first := result.ClosedTrades[0]
	second := result.ClosedTrades[1]

	// First sell: 100 shares carry the full 1005 basis, 10.05/share
	assertDecimal(t, "first.BuyCostPerShare", first.BuyCostPerShare, "10.05")
	assertDecimal(t, "first.MoneyIn", first.MoneyIn, "502.5")
	assertDecimal(t, "first.MoneyOut", first.MoneyOut, "595")
	assertDecimal(t, "first.RealizedPL", first.RealizedPL, "92.5")
	if first.RemainingInLotAfterSale != 50 {
		t.Errorf("first.RemainingInLotAfterSale = %d, want 50", first.RemainingInLotAfterSale)
	}

	// Second sell: basis recomputed from the shrunk lot, commission
	// counted again: (50*10+5)/50 = 10.1/share
	assertDecimal(t, "second.BuyCostPerShare", second.BuyCostPerShare, "10.1")
	assertDecimal(t, "second.MoneyIn", second.MoneyIn, "505")
	assertDecimal(t, "second.RealizedPL", second.RealizedPL, "90")
	if second.RemainingInLotAfterSale != 0 {
		t.Errorf("second.RemainingInLotAfterSale = %d, want 0", second.RemainingInLotAfterSale)
	}

	// Cumulative P/L runs per symbol across trades
	assertDecimal(t, "first.CumulativePLForSymbol", first.CumulativePLForSymbol, "92.5")
	assertDecimal(t, "second.CumulativePLForSymbol", second.CumulativePLForSymbol, "182.5")

	// Depleting the lot retroactively marks the earlier trade
	if !first.IsLotFullySold {
		t.Error("Expected first trade to be retroactively marked fully sold")
	}
	if !second.IsLotFullySold {
		t.Error("Expected second trade to be marked fully sold")
	}
}

func TestAnalyzePartialSellLeavesOpenRemainder(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-03-01", "PTT-001", 40, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 1 {
		t.Fatalf("Expected 1 closed trade, got %d", len(result.ClosedTrades))
	}
	if result.ClosedTrades[0].IsLotFullySold {
		t.Error("Expected trade not to be marked fully sold")
	}

	if len(result.OpenLots) != 1 {
		t.Fatalf("Expected 1 open lot, got %d", len(result.OpenLots))
	}
	lot := result.OpenLots[0]
	if lot.RemainingVolume != 60 || lot.OriginalVolume != 100 {
		t.Errorf("Volumes = %d/%d, want 60/100", lot.RemainingVolume, lot.OriginalVolume)
	}

	// Remainder keeps its proportional share of the original basis:
	// 1005/100 * 60 = 603
	assertDecimal(t, "TotalCost", lot.TotalCost, "603")
}

func TestAnalyzeSellUnknownLotIsSkipped(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-03-01", "NO-SUCH-LOT", 50, "12.00", "5.00"),
		sell("PTT", "2024-04-01", "", 50, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 0 {
		t.Fatalf("Expected no closed trades, got %d", len(result.ClosedTrades))
	}
	if len(result.OpenLots) != 1 || result.OpenLots[0].RemainingVolume != 100 {
		t.Fatal("Expected the lot to be untouched")
	}
	assertDecimal(t, "TotalRealizedPL", result.TotalRealizedPL, "0")
}

func TestAnalyzeSellExhaustedLotIsSkipped(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-03-01", "PTT-001", 100, "12.00", "5.00"),
		sell("PTT", "2024-04-01", "PTT-001", 50, "15.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 1 {
		t.Fatalf("Expected 1 closed trade, got %d", len(result.ClosedTrades))
	}
	assertDecimal(t, "TotalRealizedPL", result.TotalRealizedPL, "190")
}

func TestAnalyzeOversellIsCapped(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		sell("PTT", "2024-03-01", "PTT-001", 150, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 1 {
		t.Fatalf("Expected 1 closed trade, got %d", len(result.ClosedTrades))
	}
	trade := result.ClosedTrades[0]
	if trade.VolumeSold != 100 {
		t.Errorf("VolumeSold = %d, want 100 (capped at lot volume)", trade.VolumeSold)
	}
	if trade.RemainingInLotAfterSale != 0 {
		t.Errorf("RemainingInLotAfterSale = %d, want 0", trade.RemainingInLotAfterSale)
	}
	if len(result.OpenLots) != 0 {
		t.Error("Expected no open lots after capped sell")
	}
}

func TestAnalyzeDividendAttribution(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		buy("KBANK", "2024-02-01", "KB-001", 50, "125.00", "27.88"),
		{
			Symbol:       "PTT",
			Date:         "2024-05-10",
			Type:         model.TypeDividend,
			Volume:       100,
			PricePerUnit: dec("0.50"),
			LotID:        "PTT-001",
			TotalAmount:  decPtr("45.00"), // net of 10% withholding
		},
		{
			Symbol:       "KBANK",
			Date:         "2024-06-20",
			Type:         model.TypeCashReturn,
			Volume:       50,
			PricePerUnit: dec("2.00"),
			LotID:        "KB-001",
		},
	}

	result := analysis.Analyze(transactions)

	// Stored net amount wins for the dividend; the cash return derives
	// 50*2.00 = 100
	assertDecimal(t, "TotalDividends", result.TotalDividends, "145")

	for _, lot := range result.OpenLots {
		switch lot.LotID {
		case "PTT-001":
			assertDecimal(t, "PTT dividends", lot.DividendsReceived, "45")
		case "KB-001":
			assertDecimal(t, "KBANK dividends", lot.DividendsReceived, "100")
		default:
			t.Errorf("Unexpected lot %s", lot.LotID)
		}
	}
}

func TestAnalyzeDividendOnFullySoldLotStillCounts(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		buy("KBANK", "2024-02-01", "KB-001", 50, "125.00", "27.88"),
		{
			Symbol:       "PTT",
			Date:         "2024-05-10",
			Type:         model.TypeDividend,
			Volume:       100,
			PricePerUnit: dec("0.50"),
			LotID:        "PTT-001",
		},
		{
			Symbol:       "KBANK",
			Date:         "2024-06-01",
			Type:         model.TypeCashReturn,
			Volume:       50,
			PricePerUnit: dec("2.00"),
			LotID:        "KB-001",
		},
		sell("PTT", "2024-07-15", "PTT-001", 100, "12.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	// 100*0.50 on the lot sold off later plus 50*2.00 on the open one
	assertDecimal(t, "TotalDividends", result.TotalDividends, "150")

	if len(result.OpenLots) != 1 || result.OpenLots[0].LotID != "KB-001" {
		t.Fatalf("Expected only KB-001 to stay open, got %+v", result.OpenLots)
	}

	openLotDividends := decimal.Zero
	for _, lot := range result.OpenLots {
		openLotDividends = openLotDividends.Add(lot.DividendsReceived)
	}
	assertDecimal(t, "open-lot dividends", openLotDividends, "100")

	// The difference is the dividend attributable to closed PTT-001;
	// depleting the lot never forfeits it
	assertDecimal(t, "closed-lot dividends", result.TotalDividends.Sub(openLotDividends), "50")
}

func TestAnalyzeDividendWithoutLotCountsForNothing(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		{
			Symbol:       "PTT",
			Date:         "2024-05-10",
			Type:         model.TypeDividend,
			Volume:       100,
			PricePerUnit: dec("0.50"),
		},
	}

	result := analysis.Analyze(transactions)

	assertDecimal(t, "TotalDividends", result.TotalDividends, "0")
	assertDecimal(t, "lot dividends", result.OpenLots[0].DividendsReceived, "0")
}

func TestAnalyzeSortsOutOfOrderInput(t *testing.T) {
	transactions := []model.Transaction{
		sell("PTT", "2024-06-15", "PTT-001", 100, "12.00", "5.00"),
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	if len(result.ClosedTrades) != 1 {
		t.Fatalf("Expected the sell to match after sorting, got %d trades", len(result.ClosedTrades))
	}
	assertDecimal(t, "TotalRealizedPL", result.TotalRealizedPL, "190")
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	transactions := []model.Transaction{
		sell("PTT", "2024-06-15", "PTT-001", 100, "12.00", "5.00"),
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
	}
	before, err := json.Marshal(transactions)
	if err != nil {
		t.Fatal(err)
	}

	first := analysis.Analyze(transactions)
	second := analysis.Analyze(transactions)

	after, err := json.Marshal(transactions)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("Analyze mutated its input")
	}

	if !first.TotalRealizedPL.Equal(second.TotalRealizedPL) ||
		len(first.ClosedTrades) != len(second.ClosedTrades) ||
		len(first.OpenLots) != len(second.OpenLots) {
		t.Error("Repeated analysis of the same input diverged")
	}
}

func TestAnalyzeVolumeConservation(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		buy("PTT", "2024-02-15", "PTT-002", 200, "11.00", "5.00"),
		sell("PTT", "2024-03-01", "PTT-001", 30, "12.00", "5.00"),
		sell("PTT", "2024-04-01", "PTT-002", 200, "12.50", "5.00"),
		sell("PTT", "2024-05-01", "PTT-001", 20, "13.00", "5.00"),
	}

	result := analysis.Analyze(transactions)

	soldByLot := make(map[string]int64)
	for _, trade := range result.ClosedTrades {
		soldByLot[trade.LotID] += trade.VolumeSold
	}
	remainingByLot := make(map[string]int64)
	for _, lot := range result.OpenLots {
		remainingByLot[lot.LotID] = lot.RemainingVolume
	}

	for _, tx := range transactions {
		if !tx.IsType(model.TypeBuy) {
			continue
		}
		total := soldByLot[tx.LotID] + remainingByLot[tx.LotID]
		if total != tx.Volume {
			t.Errorf("Lot %s: sold %d + remaining %d != bought %d",
				tx.LotID, soldByLot[tx.LotID], remainingByLot[tx.LotID], tx.Volume)
		}
	}
}

func TestSymbols(t *testing.T) {
	transactions := []model.Transaction{
		buy("PTT", "2024-01-15", "PTT-001", 100, "10.00", "5.00"),
		buy("KBANK", "2024-02-01", "KB-001", 50, "125.00", "27.88"),
		buy("PTT", "2024-03-01", "PTT-002", 100, "11.00", "5.00"),
		sell("KBANK", "2024-04-01", "KB-001", 50, "130.00", "27.88"),
	}

	result := analysis.Analyze(transactions)
	symbols := result.Symbols()

	// KBANK is fully sold, so only PTT is still held
	if len(symbols) != 1 || symbols[0] != "PTT" {
		t.Errorf("Symbols() = %v, want [PTT]", symbols)
	}
}

func TestResponseUsesEmptySlices(t *testing.T) {
	resp := analysis.Analyze(nil).Response(0)

	if resp.OpenLots == nil || resp.ClosedTrades == nil || resp.AllSymbols == nil {
		t.Error("Expected empty slices, not nil, in the response")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, fragment := range []string{`"open_lots":[]`, `"closed_trades":[]`, `"all_symbols":[]`} {
		if !strings.Contains(string(data), fragment) {
			t.Errorf("Expected %s in %s", fragment, data)
		}
	}
}
