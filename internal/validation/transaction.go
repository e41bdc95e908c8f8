package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotfolio/lotfolio/internal/api/request"
	"github.com/lotfolio/lotfolio/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	model.TypeBuy: true, model.TypeSell: true,
	model.TypeDividend: true, model.TypeCashReturn: true,
}

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - symbol: non-empty
//   - date: YYYY-MM-DD (the analysis sort order depends on it)
//   - type: one of BUY, SELL, DIVIDEND, CASH_RETURN
//   - lot_id: required for all four types; a BUY opens the lot, the
//     others name the lot they affect
//   - volume: non-negative
//   - price_per_unit, commission: non-negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	txType := strings.ToUpper(strings.TrimSpace(req.Type))
	if txType == "" {
		errors["transactionType"] = "type is required"
	} else if !ValidTransactionType[txType] {
		errors["transactionType"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if ValidTransactionType[txType] && strings.TrimSpace(req.LotID) == "" {
		errors["lotId"] = "lot_id is required"
	}

	if req.Volume < 0 {
		errors["volume"] = "volume cannot be negative"
	}

	if req.PricePerUnit.IsNegative() {
		errors["pricePerUnit"] = "price_per_unit cannot be negative"
	}

	if req.Commission.IsNegative() {
		errors["commission"] = "commission cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
