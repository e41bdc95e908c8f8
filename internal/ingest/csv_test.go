package ingest_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/ingest"
	"github.com/lotfolio/lotfolio/internal/model"
)

const csvHeader = "Type,Date,Symbol,Volume,Price per Share,Commission,Lot Number,Tax Rate (%),Remark\n"

func readCSV(t *testing.T, body string, existingLots map[string]bool) ingest.ImportResult {
	t.Helper()
	result, err := ingest.ReadCSV(strings.NewReader(csvHeader+body), existingLots)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return result
}

func TestReadCSVBuyAndSell(t *testing.T) {
	result := readCSV(t, ""+
		"BUY,2024-01-15,ptt,100,10.00,5.00,PTT-001,,first lot\n"+
		"SELL,2024-06-15,PTT,50,12.00,5.00,PTT-001,,\n",
		nil)

	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped rows, got %v", result.Skipped)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(result.Transactions))
	}

	buy := result.Transactions[0]
	if buy.Symbol != "PTT" {
		t.Errorf("Symbol = %s, want PTT (uppercased)", buy.Symbol)
	}
	if buy.Type != model.TypeBuy || buy.LotID != "PTT-001" || buy.Volume != 100 {
		t.Errorf("Unexpected BUY: %+v", buy)
	}
	if !buy.Commission.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("Commission = %s, want 5.00", buy.Commission)
	}
	if buy.Remark != "first lot" {
		t.Errorf("Remark = %q", buy.Remark)
	}
	if buy.TotalAmount != nil {
		t.Error("BUY rows must not precompute TotalAmount")
	}

	sell := result.Transactions[1]
	if sell.Type != model.TypeSell || sell.LotID != "PTT-001" || sell.Volume != 50 {
		t.Errorf("Unexpected SELL: %+v", sell)
	}
}

func TestReadCSVDividendNetOfTax(t *testing.T) {
	result := readCSV(t, ""+
		"DIVIDEND,2024-05-10,PTT,100,0.50,,PTT-001,10,\n"+
		"DIVIDEND,2024-08-10,PTT,100,0.50,,PTT-001,,\n"+
		"DIVIDEND,2024-11-10,PTT,100,0.50,,PTT-001,0,\n",
		nil)

	if len(result.Transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d (skipped %v)", len(result.Transactions), result.Skipped)
	}

	// Explicit 10% withholding: 50 gross -> 45 net
	first := result.Transactions[0]
	if first.TotalAmount == nil || !first.TotalAmount.Equal(decimal.RequireFromString("45")) {
		t.Errorf("TotalAmount = %v, want 45", first.TotalAmount)
	}
	if first.TaxRate == nil || !first.TaxRate.Equal(decimal.NewFromInt(10)) {
		t.Errorf("TaxRate = %v, want 10", first.TaxRate)
	}

	// Missing rate falls back to the 10% default
	second := result.Transactions[1]
	if second.TotalAmount == nil || !second.TotalAmount.Equal(decimal.RequireFromString("45")) {
		t.Errorf("TotalAmount = %v, want 45 with default rate", second.TotalAmount)
	}

	// Explicit zero rate means no withholding
	third := result.Transactions[2]
	if third.TotalAmount == nil || !third.TotalAmount.Equal(decimal.RequireFromString("50")) {
		t.Errorf("TotalAmount = %v, want 50 with zero rate", third.TotalAmount)
	}
}

func TestReadCSVCashReturn(t *testing.T) {
	result := readCSV(t, "CASH_RETURN,2024-06-20,KBANK,50,2.00,,KB-001,,\n", nil)

	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	tx := result.Transactions[0]
	if tx.TotalAmount == nil || !tx.TotalAmount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("TotalAmount = %v, want 100", tx.TotalAmount)
	}
	if tx.TaxRate != nil {
		t.Error("CASH_RETURN must not carry a tax rate")
	}
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	result := readCSV(t, ""+
		"BUY,2024-01-15,PTT,100,10.00,5.00,PTT-001,,\n"+
		",2024-01-16,PTT,100,10.00,5.00,PTT-002,,\n"+
		"BUY,2024-01-17,PTT,abc,10.00,5.00,PTT-003,,\n"+
		"BUY,2024-01-18,PTT,100,not-a-price,5.00,PTT-004,,\n",
		nil)

	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 good transaction, got %d", len(result.Transactions))
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("Expected 3 skipped rows, got %v", result.Skipped)
	}

	// Row numbers count the header as line 1
	if result.Skipped[0].Row != 3 || result.Skipped[1].Row != 4 || result.Skipped[2].Row != 5 {
		t.Errorf("Unexpected row numbers: %v", result.Skipped)
	}
}

func TestReadCSVDuplicateLots(t *testing.T) {
	existing := map[string]bool{"PTT-001": true}

	result := readCSV(t, ""+
		"BUY,2024-01-15,PTT,100,10.00,5.00,PTT-001,,\n"+
		"BUY,2024-01-16,PTT,100,10.00,5.00,PTT-002,,\n"+
		"BUY,2024-01-17,PTT,100,10.00,5.00,PTT-002,,\n",
		existing)

	// PTT-001 clashes with the ledger, the second PTT-002 with the batch
	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	if result.Transactions[0].LotID != "PTT-002" {
		t.Errorf("LotID = %s, want PTT-002", result.Transactions[0].LotID)
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("Expected 2 skipped rows, got %v", result.Skipped)
	}
}

func TestReadCSVMissingRequiredColumns(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader("Date,Symbol\n2024-01-15,PTT\n"), nil)
	if err == nil {
		t.Fatal("Expected an error for a header without a Type column")
	}
}
