package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/portfolio"
)

func portfolioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio <file.csv>",
		Short: "Parse a broker portfolio export",
		Args:  cobra.ExactArgs(1),
		RunE:  runPortfolio,
	}
}

func runPortfolio(_ *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = file.Close() }()

	result := portfolio.Parse(file)
	if !result.Success {
		return fmt.Errorf("portfolio parse failed: %s", result.ErrorMessage)
	}

	fmt.Printf("Account: %s\n", result.AccountLabel)
	if !result.ExtractedAt.IsZero() {
		fmt.Printf("Extracted: %s\n", result.ExtractedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Total value: %.2f  Total cost basis: %.2f\n\n", result.TotalValue, result.TotalCostBasis)

	fmt.Printf("%-8s  %-14s  %-28s  %10s  %10s  %12s  %12s\n",
		"TICKER", "ISIN", "NAME", "PRICE", "QTY", "COST", "VALUE")
	for _, row := range result.Rows {
		fmt.Printf("%-8s  %-14s  %-28.28s  %10.2f  %10.2f  %12.2f  %12.2f\n",
			row.Ticker, row.ISIN, row.Name, row.Price, row.Quantity, row.CostBasis, row.CurrentValue)
	}
	return nil
}
