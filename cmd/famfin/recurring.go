package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring-payment templates",
	}
	cmd.AddCommand(recurringAddCmd())
	return cmd
}

func recurringAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recurring template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			amount, _ := cmd.Flags().GetFloat64("amount")
			categoryType := model.CategoryTypeExpense
			if income, _ := cmd.Flags().GetBool("income"); income {
				categoryType = model.CategoryTypeIncome
			}

			tmpl := &model.RecurringTransaction{
				TenantID: tenant,
				Name:     args[0],
				Amount:   amount,
				Type:     categoryType,
				IsActive: true,
			}
			if categoryID, _ := cmd.Flags().GetInt64("category"); categoryID > 0 {
				tmpl.CategoryID = &categoryID
			}

			created, err := store.CreateRecurringTransaction(ctx, tmpl)
			if err != nil {
				return err
			}
			fmt.Printf("Created recurring template %d: %s (%.2f)\n", created.ID, created.Name, created.Amount)
			return nil
		},
	}
	cmd.Flags().Float64("amount", 0, "nominal amount")
	cmd.Flags().Bool("income", false, "income template (default: expense)")
	cmd.Flags().Int64("category", 0, "category id carried onto learned matches")
	return cmd
}

func receivablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receivables",
		Short: "Manage open receivables",
	}
	cmd.AddCommand(receivablesAddCmd())
	return cmd
}

func receivablesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record an open receivable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			amount, _ := cmd.Flags().GetFloat64("amount")
			rcv := &model.Receivable{
				TenantID:     tenant,
				Description:  args[0],
				Amount:       amount,
				SnapshotDate: time.Now(),
				IsOpen:       true,
			}
			created, err := store.CreateReceivable(ctx, rcv)
			if err != nil {
				return err
			}
			fmt.Printf("Created receivable %d: %s (%.2f)\n", created.ID, created.Description, created.Amount)
			return nil
		},
	}
	cmd.Flags().Float64("amount", 0, "expected amount")
	return cmd
}
