package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest is the body for appending one ledger entry.
type CreateTransactionRequest struct {
	Symbol       string           `json:"symbol"`
	Date         string           `json:"date"`
	Type         string           `json:"type"`
	Volume       int64            `json:"volume"`
	PricePerUnit decimal.Decimal  `json:"price_per_unit"`
	Commission   decimal.Decimal  `json:"commission"`
	LotID        string           `json:"lot_id"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
	Remark       string           `json:"remark,omitempty"`
}
