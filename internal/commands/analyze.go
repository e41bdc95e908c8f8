package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lotfolio/lotfolio/internal/analysis"
)

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <ledger.json>",
		Short: "Analyze a transaction ledger and print the lot summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactions, err := loadLedger(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Ledger loaded. Found %d transaction(s).\n", len(transactions))

			result := analysis.Analyze(transactions)

			fmt.Println("\n--- Portfolio Analysis ---")
			fmt.Printf("Total investment cost (all BUYs): %s\n", result.TotalInvestment.StringFixed(2))
			fmt.Printf("Total realized P/L: %s\n", result.TotalRealizedPL.StringFixed(2))
			fmt.Printf("Total dividends received: %s\n", result.TotalDividends.StringFixed(2))

			fmt.Println("\n--- Current Holdings (Open Lots) ---")
			for _, lot := range result.OpenLots {
				fmt.Printf("  Lot %s: %s - %d/%d shares @ %s | Dividends: %s\n",
					lot.LotID, lot.Symbol, lot.RemainingVolume, lot.OriginalVolume,
					lot.BuyPrice.StringFixed(2), lot.DividendsReceived.StringFixed(2))
			}

			fmt.Println("\n--- Closed Trades (Realized P/L) ---")
			for _, trade := range result.ClosedTrades {
				fmt.Printf("  Sold %s (Lot %s): Realized P/L: %s | Cumulative P/L: %s\n",
					trade.Symbol, trade.LotID,
					trade.RealizedPL.StringFixed(2), trade.CumulativePLForSymbol.StringFixed(2))
			}

			return nil
		},
	}
}
