package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lotfolio/lotfolio/internal/model"
)

// loadLedger reads a JSON transaction list from disk. A missing file is
// an empty ledger, not an error.
func loadLedger(path string) ([]model.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Transaction{}, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	var transactions []model.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("parsing ledger %s: %w", path, err)
	}
	return transactions, nil
}

// saveLedger writes a transaction list to disk as indented JSON.
func saveLedger(path string, transactions []model.Transaction) error {
	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing ledger %s: %w", path, err)
	}
	return nil
}
