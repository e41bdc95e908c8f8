package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lotfolio/lotfolio/internal/ingest"
	"github.com/lotfolio/lotfolio/internal/model"
)

func newImportCommand() *cobra.Command {
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "import <transactions.csv>",
		Short: "Convert a CSV of new transactions and append them to a JSON ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactions, err := loadLedger(ledgerPath)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d existing transaction(s) from %s.\n", len(transactions), ledgerPath)

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening CSV %s: %w", args[0], err)
			}
			defer file.Close()

			existingLots := make(map[string]bool)
			for _, tx := range transactions {
				if tx.IsType(model.TypeBuy) && tx.LotID != "" {
					existingLots[tx.LotID] = true
				}
			}

			result, err := ingest.ReadCSV(file, existingLots)
			if err != nil {
				return err
			}
			for _, issue := range result.Skipped {
				fmt.Printf("Warning: skipping row %d: %s\n", issue.Row, issue.Reason)
			}

			transactions = append(transactions, result.Transactions...)
			if err := saveLedger(ledgerPath, transactions); err != nil {
				return err
			}

			fmt.Printf("Added %d new transaction(s). %s now contains %d transaction(s).\n",
				len(result.Transactions), ledgerPath, len(transactions))
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "portfolio.json", "JSON ledger file to append to")

	return cmd
}
