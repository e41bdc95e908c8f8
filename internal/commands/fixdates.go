package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lotfolio/lotfolio/internal/ingest"
)

func newFixDatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fix-dates <ledger.json>",
		Short: "Normalize day-first dates in a JSON ledger to ISO YYYY-MM-DD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			transactions, err := loadLedger(path)
			if err != nil {
				return err
			}

			// Keep the original around in case the rewrite goes wrong.
			backupPath := path + ".backup.json"
			original, err := os.ReadFile(path)
			if err == nil {
				if err := os.WriteFile(backupPath, original, 0o644); err != nil {
					return fmt.Errorf("writing backup %s: %w", backupPath, err)
				}
				fmt.Printf("Backup written to %s.\n", backupPath)
			}

			fixed := ingest.FixDates(transactions)
			if err := saveLedger(path, transactions); err != nil {
				return err
			}

			fmt.Printf("Fixed %d date(s) in %s.\n", fixed, path)
			return nil
		},
	}
}
