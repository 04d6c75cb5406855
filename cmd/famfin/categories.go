package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the tenant's categories",
	}
	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			for _, categoryType := range []model.CategoryType{model.CategoryTypeExpense, model.CategoryTypeIncome} {
				cats, err := store.ActiveCategories(ctx, tenant, categoryType)
				if err != nil {
					return err
				}
				fmt.Printf("%s:\n", categoryType)
				for _, cat := range cats {
					fmt.Printf("  %4d  %s\n", cat.ID, cat.Name)
				}
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
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

			categoryType := model.CategoryTypeExpense
			if income, _ := cmd.Flags().GetBool("income"); income {
				categoryType = model.CategoryTypeIncome
			}

			cat, err := store.CreateCategory(ctx, tenant, args[0], categoryType)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s category %d: %s\n", cat.Type, cat.ID, cat.Name)
			return nil
		},
	}
	cmd.Flags().Bool("income", false, "create an income category (default: expense)")
	return cmd
}
