package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Ledger table
		CREATE TABLE ledger_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			date VARCHAR(10) NOT NULL,
			type VARCHAR(12) NOT NULL,
			volume INTEGER NOT NULL DEFAULT 0,
			price_per_unit TEXT NOT NULL DEFAULT '0',
			commission TEXT NOT NULL DEFAULT '0',
			lot_id VARCHAR(50),
			total_amount TEXT,
			tax_rate TEXT,
			remark TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Analysis snapshot table
		CREATE TABLE analysis_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			snapshot_date VARCHAR(10) NOT NULL,
			total_investment TEXT NOT NULL,
			total_realized_pl TEXT NOT NULL,
			total_dividends TEXT NOT NULL,
			open_lot_count INTEGER NOT NULL,
			closed_trade_count INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_analysis_snapshot_date UNIQUE (snapshot_date)
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS ix_ledger_transaction_date ON ledger_transaction(date);
		CREATE INDEX IF NOT EXISTS ix_ledger_transaction_lot_id ON ledger_transaction(lot_id);
		CREATE INDEX IF NOT EXISTS ix_ledger_transaction_symbol ON ledger_transaction(symbol);
		CREATE INDEX IF NOT EXISTS ix_analysis_snapshot_date ON analysis_snapshot(snapshot_date);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"ledger_transaction",
		"analysis_snapshot",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "ledger_transaction", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
