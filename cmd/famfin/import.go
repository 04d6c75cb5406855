package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/common"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/engine"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank CSV export",
		Long: `Parse a bank CSV export, pre-categorize every row and link rows to
recurring payments and open receivables. Nothing is persisted; the staged
result is printed for review. With --learn, every suggestion is treated as
confirmed and fed back into the rule store.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("delimiter", "", "field delimiter (default: auto-detect)")
	cmd.Flags().Int("skip-rows", 1, "number of header rows to skip")
	cmd.Flags().Int("date-col", 0, "zero-based date column index")
	cmd.Flags().Int("desc-col", 1, "zero-based description column index")
	cmd.Flags().Int("amount-col", 2, "zero-based amount column index")
	cmd.Flags().Int("category-col", -1, "zero-based category column index (-1 = none)")
	cmd.Flags().String("date-format", "02/01/2006", "Go layout for the date column")
	cmd.Flags().String("decimal-separator", ",", "decimal separator used by the export (, or .)")
	cmd.Flags().Bool("learn", false, "confirm every suggestion and update learned rules")

	_ = viper.BindPFlag("import.delimiter", cmd.Flags().Lookup("delimiter"))
	_ = viper.BindPFlag("import.skip_rows", cmd.Flags().Lookup("skip-rows"))
	_ = viper.BindPFlag("import.date_col", cmd.Flags().Lookup("date-col"))
	_ = viper.BindPFlag("import.desc_col", cmd.Flags().Lookup("desc-col"))
	_ = viper.BindPFlag("import.amount_col", cmd.Flags().Lookup("amount-col"))
	_ = viper.BindPFlag("import.category_col", cmd.Flags().Lookup("category-col"))
	_ = viper.BindPFlag("import.date_format", cmd.Flags().Lookup("date-format"))
	_ = viper.BindPFlag("import.decimal_separator", cmd.Flags().Lookup("decimal-separator"))

	return cmd
}

func mappingFromConfig() *model.CsvColumnMapping {
	mapping := &model.CsvColumnMapping{
		SkipRows:          viper.GetInt("import.skip_rows"),
		DateColumn:        viper.GetInt("import.date_col"),
		DescriptionColumn: viper.GetInt("import.desc_col"),
		AmountColumn:      viper.GetInt("import.amount_col"),
		CategoryColumn:    viper.GetInt("import.category_col"),
		DateFormat:        viper.GetString("import.date_format"),
		DecimalSeparator:  ',',
	}
	if sep := viper.GetString("import.decimal_separator"); sep != "" {
		mapping.DecimalSeparator = rune(sep[0])
	}
	if delim := viper.GetString("import.delimiter"); delim != "" {
		mapping.Delimiter = rune(delim[0])
	}
	return mapping
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tenant, err := requireTenant()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = file.Close() }()

	pipeline := engine.New(store)
	txns, err := pipeline.Run(ctx, file, mappingFromConfig(), tenant)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: %s", common.ErrNoRows, args[0])
	}

	learn, _ := cmd.Flags().GetBool("learn")

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Processing transactions..."),
	)

	for _, txn := range txns {
		if learn {
			pipeline.Confirm(ctx, tenant, txn)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	printStaged(txns)
	return nil
}

func printStaged(txns []*model.ImportedTransaction) {
	fmt.Printf("%-10s  %10s  %-32s  %-22s  %-14s\n", "DATE", "AMOUNT", "DESCRIPTION", "CATEGORY", "MATCH")
	for _, txn := range txns {
		category := "-"
		if txn.SuggestedCategoryID != nil {
			category = fmt.Sprintf("%s (%d%%)", txn.SuggestedCategoryName, txn.Confidence)
		}
		match := "-"
		if txn.MatchType != model.MatchNone {
			match = fmt.Sprintf("%s:%s (%d%%)", txn.MatchType, txn.MatchedEntityName, txn.MatchConfidence)
		}
		flags := ""
		if txn.IsDuplicate {
			flags = " [dup]"
		}
		fmt.Printf("%-10s  %10.2f  %-32.32s  %-22.22s  %-14s%s\n",
			txn.Date.Format("2006-01-02"), txn.Amount, txn.Description, category, match, flags)
	}
}
