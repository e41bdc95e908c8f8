package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction types recorded in the ledger.
const (
	TypeBuy        = "BUY"
	TypeSell       = "SELL"
	TypeDividend   = "DIVIDEND"
	TypeCashReturn = "CASH_RETURN"
)

// Transaction represents one immutable ledger entry as recorded.
//
// Dates are ISO YYYY-MM-DD strings and are compared lexicographically
// during analysis; normalization of other formats is the ingestion
// layer's job (see internal/ingest).
//
// LotID links the entry to a purchase lot: on a BUY it names the lot
// being opened (unique across all BUYs), on SELL/DIVIDEND/CASH_RETURN
// it names the lot being affected.
type Transaction struct {
	ID           string          `json:"id,omitempty"`
	Symbol       string          `json:"symbol"`
	Date         string          `json:"date"`
	Type         string          `json:"type"`
	Volume       int64           `json:"volume"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Commission   decimal.Decimal `json:"commission"`
	LotID        string          `json:"lot_id,omitempty"`

	// TotalAmount is the precomputed monetary effect. When present it is
	// the source of truth; when absent EffectiveAmount derives it.
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`

	// TaxRate is recorded on DIVIDEND entries only. It is passthrough
	// data; the tax discount itself is applied at ingestion time.
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
	Remark  string           `json:"remark,omitempty"`

	// Denormalized output fields carried in serialized ledgers.
	// Never read as analysis input.
	RealizedPL            *decimal.Decimal `json:"realized_pl,omitempty"`
	CumulativePLForSymbol *decimal.Decimal `json:"cumulative_pl_for_symbol,omitempty"`
}

// IsType reports whether the transaction is of the given type,
// comparing case-insensitively.
func (t Transaction) IsType(txType string) bool {
	return strings.EqualFold(t.Type, txType)
}

// EffectiveAmount returns the monetary effect of the transaction.
// A stored TotalAmount always wins. Otherwise BUY costs
// volume*price+commission, SELL yields volume*price-commission, and
// DIVIDEND/CASH_RETURN yield volume*price when both are present.
// Unknown types degrade to zero rather than erroring.
func (t Transaction) EffectiveAmount() decimal.Decimal {
	if t.TotalAmount != nil {
		return *t.TotalAmount
	}

	volume := decimal.NewFromInt(t.Volume)
	switch strings.ToUpper(t.Type) {
	case TypeBuy:
		return volume.Mul(t.PricePerUnit).Add(t.Commission)
	case TypeSell:
		return volume.Mul(t.PricePerUnit).Sub(t.Commission)
	case TypeDividend, TypeCashReturn:
		if t.Volume > 0 && !t.PricePerUnit.IsZero() {
			return volume.Mul(t.PricePerUnit)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
