// Package ingest converts user-maintained tabular files into ledger
// transactions and repairs the date formats found in older ledgers.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/model"
)

// Expected CSV column headers.
const (
	colType       = "Type"
	colDate       = "Date"
	colSymbol     = "Symbol"
	colVolume     = "Volume"
	colPrice      = "Price per Share"
	colCommission = "Commission"
	colLotNumber  = "Lot Number"
	colTaxRate    = "Tax Rate (%)"
	colRemark     = "Remark"
)

// Dividend tax withheld when the row does not specify a rate.
var defaultTaxRate = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// RowIssue describes one skipped CSV row. Row numbers are 1-based file
// line numbers, counting the header.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult holds the converted transactions and the per-row report
// of everything that was skipped. A bad row never aborts the batch.
type ImportResult struct {
	Transactions []model.Transaction `json:"transactions"`
	Skipped      []RowIssue          `json:"skipped"`
}

// ReadCSV converts rows from a transaction CSV into ledger entries.
//
// DIVIDEND rows are pre-discounted here: TotalAmount is set to the
// net-of-tax payout so the analysis core only ever sums net values.
// CASH_RETURN rows likewise get their TotalAmount precomputed.
//
// existingLots holds BUY lot ids already present in the ledger; a BUY
// row reusing one is skipped and reported, keeping lot ids unique.
func ReadCSV(r io.Reader, existingLots map[string]bool) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colType, colDate, colSymbol} {
		if _, ok := columns[required]; !ok {
			return ImportResult{}, fmt.Errorf("missing CSV column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := ImportResult{}
	seenLots := make(map[string]bool, len(existingLots))
	for id := range existingLots {
		seenLots[id] = true
	}

	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped = append(result.Skipped, RowIssue{Row: row, Reason: err.Error()})
			continue
		}

		txType := strings.ToUpper(field(record, colType))
		date := field(record, colDate)
		symbol := strings.ToUpper(field(record, colSymbol))
		if txType == "" || date == "" || symbol == "" {
			result.Skipped = append(result.Skipped, RowIssue{
				Row:    row,
				Reason: "missing required fields (Type, Date, Symbol)",
			})
			continue
		}

		tx := model.Transaction{
			Symbol: symbol,
			Date:   date,
			Type:   txType,
			LotID:  field(record, colLotNumber),
			Remark: field(record, colRemark),
		}

		volume, err := parseVolume(field(record, colVolume))
		if err != nil {
			result.Skipped = append(result.Skipped, RowIssue{Row: row, Reason: err.Error()})
			continue
		}
		price, err := parseDecimal(field(record, colPrice))
		if err != nil {
			result.Skipped = append(result.Skipped, RowIssue{Row: row, Reason: err.Error()})
			continue
		}
		tx.Volume = volume
		tx.PricePerUnit = price

		switch txType {
		case model.TypeBuy, model.TypeSell:
			commission, err := parseDecimal(field(record, colCommission))
			if err != nil {
				result.Skipped = append(result.Skipped, RowIssue{Row: row, Reason: err.Error()})
				continue
			}
			tx.Commission = commission
		case model.TypeDividend:
			taxRate := defaultTaxRate
			if raw := field(record, colTaxRate); raw != "" {
				taxRate, err = parseDecimal(raw)
				if err != nil {
					result.Skipped = append(result.Skipped, RowIssue{Row: row, Reason: err.Error()})
					continue
				}
			}
			gross := price.Mul(decimal.NewFromInt(volume))
			net := gross.Mul(decimal.NewFromInt(1).Sub(taxRate.Div(hundred))).Round(2)
			tx.TaxRate = &taxRate
			tx.TotalAmount = &net
		case model.TypeCashReturn:
			total := price.Mul(decimal.NewFromInt(volume)).Round(2)
			tx.TotalAmount = &total
		}

		if txType == model.TypeBuy && tx.LotID != "" {
			if seenLots[tx.LotID] {
				result.Skipped = append(result.Skipped, RowIssue{
					Row:    row,
					Reason: fmt.Sprintf("lot %q already exists in the ledger", tx.LotID),
				})
				continue
			}
			seenLots[tx.LotID] = true
		}

		result.Transactions = append(result.Transactions, tx)
	}

	return result, nil
}

func parseVolume(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q", s)
	}
	return v, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}
