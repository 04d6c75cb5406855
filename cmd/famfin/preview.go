package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/csvimport"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Preview the first rows of a CSV export",
		Long: `Show the first rows of a CSV export split into fields, so column
indices can be lined up before running an import.`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	cmd.Flags().IntP("rows", "n", 10, "number of rows to preview")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = file.Close() }()

	n, _ := cmd.Flags().GetInt("rows")
	rows, err := csvimport.PreviewRows(file, n)
	if err != nil {
		return fmt.Errorf("failed to preview %s: %w", args[0], err)
	}

	for i, fields := range rows {
		numbered := make([]string, len(fields))
		for j, f := range fields {
			numbered[j] = fmt.Sprintf("[%d]%s", j, f)
		}
		fmt.Printf("%3d: %s\n", i+1, strings.Join(numbered, "  "))
	}
	return nil
}
