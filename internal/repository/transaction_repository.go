package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio/internal/model"
)

// TransactionRepository provides data access methods for the
// ledger_transaction table.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, symbol, date, type, volume, price_per_unit, commission, lot_id, total_amount, tax_rate, remark`

// ListTransactions retrieves the full ledger sorted by date ascending.
// Rows sharing a date keep insertion order, matching the stable sort
// the analysis core applies.
func (r *TransactionRepository) ListTransactions() ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		ORDER BY date ASC, created_at ASC, rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}

// InsertTransaction appends a single transaction to the ledger.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, insertArgs(t)...)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// InsertTransactions appends a batch of transactions atomically.
func (r *TransactionRepository) InsertTransactions(ctx context.Context, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := insertAll(ctx, tx, transactions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction batch: %w", err)
	}
	return nil
}

// ReplaceAll swaps the entire ledger for the given transactions in one
// SQL transaction. Used by the year-end roll forward.
func (r *TransactionRepository) ReplaceAll(ctx context.Context, transactions []model.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_transaction`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	if err := insertAll(ctx, tx, transactions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger replacement: %w", err)
	}
	return nil
}

// ExistingLotIDs returns the set of lot ids already claimed by BUY rows.
func (r *TransactionRepository) ExistingLotIDs() (map[string]bool, error) {
	query := `
		SELECT DISTINCT lot_id
		FROM ledger_transaction
		WHERE type = ? AND lot_id IS NOT NULL AND lot_id != ''
	`

	rows, err := r.db.Query(query, model.TypeBuy)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot ids: %w", err)
	}
	defer rows.Close()

	lots := make(map[string]bool)
	for rows.Next() {
		var lotID string
		if err := rows.Scan(&lotID); err != nil {
			return nil, fmt.Errorf("failed to scan lot id: %w", err)
		}
		lots[lotID] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot ids: %w", err)
	}

	return lots, nil
}

func insertAll(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range transactions {
		if _, err := stmt.ExecContext(ctx, insertArgs(&transactions[i])...); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}
	return nil
}

func insertArgs(t *model.Transaction) []any {
	return []any{
		t.ID,
		t.Symbol,
		t.Date,
		strings.ToUpper(t.Type),
		t.Volume,
		t.PricePerUnit.String(),
		t.Commission.String(),
		nullableString(t.LotID),
		nullableDecimal(t.TotalAmount),
		nullableDecimal(t.TaxRate),
		nullableString(t.Remark),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var priceStr, commissionStr string
	var lotID, totalAmount, taxRate, remark sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Symbol,
		&t.Date,
		&t.Type,
		&t.Volume,
		&priceStr,
		&commissionStr,
		&lotID,
		&totalAmount,
		&taxRate,
		&remark,
	)
	if err != nil {
		return t, fmt.Errorf("failed to scan ledger_transaction results: %w", err)
	}

	if t.PricePerUnit, err = decimal.NewFromString(priceStr); err != nil {
		return t, fmt.Errorf("failed to parse price_per_unit: %w", err)
	}
	if t.Commission, err = decimal.NewFromString(commissionStr); err != nil {
		return t, fmt.Errorf("failed to parse commission: %w", err)
	}

	t.LotID = lotID.String
	t.Remark = remark.String

	if totalAmount.Valid {
		d, err := decimal.NewFromString(totalAmount.String)
		if err != nil {
			return t, fmt.Errorf("failed to parse total_amount: %w", err)
		}
		t.TotalAmount = &d
	}
	if taxRate.Valid {
		d, err := decimal.NewFromString(taxRate.String)
		if err != nil {
			return t, fmt.Errorf("failed to parse tax_rate: %w", err)
		}
		t.TaxRate = &d
	}

	return t, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
