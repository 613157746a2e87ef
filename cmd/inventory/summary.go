package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bioskin/inventory/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print inventory totals and low stock items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, _ := cmd.Flags().GetInt("threshold")
		if threshold <= 0 {
			threshold = cfg.LowStockThreshold
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		s, err := store.GetSummary(cmd.Context(), database)
		if err != nil {
			return err
		}
		low, err := store.ListLowStock(cmd.Context(), database, threshold)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Items:          %d\n", s.TotalItems)
		fmt.Fprintf(out, "Total quantity: %d\n", s.TotalQuantity)
		fmt.Fprintf(out, "Total value:    %s\n", s.TotalValue.StringFixed(2))
		fmt.Fprintf(out, "\nLow stock (< %d): %d\n", threshold, len(low))
		for _, item := range low {
			fmt.Fprintf(out, "  %-12s %-30s %d\n", item.SKUString(), item.Name, item.Quantity)
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().Int("threshold", 0, "low stock threshold (default from configuration)")
	rootCmd.AddCommand(summaryCmd)
}
