package model

import "time"

// CategoryType indicates whether a category applies to income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// CategoryTypeForAmount returns the category direction implied by a signed
// amount.
func CategoryTypeForAmount(amount float64) CategoryType {
	if amount > 0 {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Category is a tenant-owned classification target. The pipeline only reads
// categories; creation and deletion belong to the caller.
type Category struct {
	CreatedAt time.Time
	Name      string
	TenantID  string
	Type      CategoryType
	ID        int64
	IsActive  bool
}
