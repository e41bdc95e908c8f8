package testutil

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/model"
)

// TransactionBuilder provides a fluent interface for creating test
// ledger transactions.
//
// Example usage:
//
//	// Simple BUY with defaults
//	tx := testutil.NewTransaction().Build(t, db)
//
//	// Customized SELL against a lot
//	tx := testutil.NewTransaction().
//	    AsSell().
//	    WithSymbol("PTT").
//	    WithLotID("PTT-001").
//	    WithVolume(50).
//	    WithPrice("12.00").
//	    Build(t, db)
type TransactionBuilder struct {
	ID           string
	Symbol       string
	Date         string
	Type         string
	Volume       int64
	PricePerUnit decimal.Decimal
	Commission   decimal.Decimal
	LotID        string
	TotalAmount  *decimal.Decimal
	TaxRate      *decimal.Decimal
	Remark       string
}

// NewTransaction creates a TransactionBuilder with sensible defaults:
// a 100-share BUY at 10.00 with a 5.00 commission and a unique lot id.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		ID:           MakeID(),
		Symbol:       "PTT",
		Date:         "2024-01-15",
		Type:         model.TypeBuy,
		Volume:       100,
		PricePerUnit: decimal.RequireFromString("10.00"),
		Commission:   decimal.RequireFromString("5.00"),
		LotID:        MakeLotID("LOT"),
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithDate sets a custom ISO date.
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// WithType sets a custom transaction type.
func (b *TransactionBuilder) WithType(txType string) *TransactionBuilder {
	b.Type = txType
	return b
}

// AsSell marks the transaction as a SELL.
func (b *TransactionBuilder) AsSell() *TransactionBuilder {
	b.Type = model.TypeSell
	return b
}

// AsDividend marks the transaction as a DIVIDEND.
func (b *TransactionBuilder) AsDividend() *TransactionBuilder {
	b.Type = model.TypeDividend
	return b
}

// AsCashReturn marks the transaction as a CASH_RETURN.
func (b *TransactionBuilder) AsCashReturn() *TransactionBuilder {
	b.Type = model.TypeCashReturn
	return b
}

// WithVolume sets a custom volume.
func (b *TransactionBuilder) WithVolume(volume int64) *TransactionBuilder {
	b.Volume = volume
	return b
}

// WithPrice sets a custom price per unit from a decimal string.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.PricePerUnit = decimal.RequireFromString(price)
	return b
}

// WithCommission sets a custom commission from a decimal string.
func (b *TransactionBuilder) WithCommission(commission string) *TransactionBuilder {
	b.Commission = decimal.RequireFromString(commission)
	return b
}

// WithLotID sets a custom lot id.
func (b *TransactionBuilder) WithLotID(lotID string) *TransactionBuilder {
	b.LotID = lotID
	return b
}

// WithoutLotID clears the lot id.
func (b *TransactionBuilder) WithoutLotID() *TransactionBuilder {
	b.LotID = ""
	return b
}

// WithTotalAmount sets a pre-computed total amount from a decimal string.
func (b *TransactionBuilder) WithTotalAmount(amount string) *TransactionBuilder {
	d := decimal.RequireFromString(amount)
	b.TotalAmount = &d
	return b
}

// WithTaxRate sets a withholding tax rate from a decimal string.
func (b *TransactionBuilder) WithTaxRate(rate string) *TransactionBuilder {
	d := decimal.RequireFromString(rate)
	b.TaxRate = &d
	return b
}

// WithRemark sets a free-form remark.
func (b *TransactionBuilder) WithRemark(remark string) *TransactionBuilder {
	b.Remark = remark
	return b
}

// Transaction returns the built transaction without touching a database.
// Useful for exercising the analyzer directly.
func (b *TransactionBuilder) Transaction() model.Transaction {
	return model.Transaction{
		ID:           b.ID,
		Symbol:       b.Symbol,
		Date:         b.Date,
		Type:         b.Type,
		Volume:       b.Volume,
		PricePerUnit: b.PricePerUnit,
		Commission:   b.Commission,
		LotID:        b.LotID,
		TotalAmount:  b.TotalAmount,
		TaxRate:      b.TaxRate,
		Remark:       b.Remark,
	}
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO ledger_transaction (id, symbol, date, type, volume, price_per_unit, commission, lot_id, total_amount, tax_rate, remark)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lotID, totalAmount, taxRate, remark any
	if b.LotID != "" {
		lotID = b.LotID
	}
	if b.TotalAmount != nil {
		totalAmount = b.TotalAmount.String()
	}
	if b.TaxRate != nil {
		taxRate = b.TaxRate.String()
	}
	if b.Remark != "" {
		remark = b.Remark
	}

	_, err := db.Exec(query,
		b.ID, b.Symbol, b.Date, b.Type, b.Volume,
		b.PricePerUnit.String(), b.Commission.String(),
		lotID, totalAmount, taxRate, remark,
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return b.Transaction()
}

// Convenience functions

// CreateBuy creates a BUY lot with the given symbol, lot id and volume.
//
// Example usage:
//
//	buy := testutil.CreateBuy(t, db, "PTT", "PTT-001", 100)
func CreateBuy(t *testing.T, db *sql.DB, symbol, lotID string, volume int64) model.Transaction {
	t.Helper()
	return NewTransaction().WithSymbol(symbol).WithLotID(lotID).WithVolume(volume).Build(t, db)
}

// CreateSell creates a SELL against the given lot.
//
// Example usage:
//
//	sell := testutil.CreateSell(t, db, "PTT", "PTT-001", 50, "12.00")
func CreateSell(t *testing.T, db *sql.DB, symbol, lotID string, volume int64, price string) model.Transaction {
	t.Helper()
	return NewTransaction().
		AsSell().
		WithSymbol(symbol).
		WithLotID(lotID).
		WithVolume(volume).
		WithPrice(price).
		WithDate("2024-06-15").
		Build(t, db)
}
