// Package service defines the boundary interfaces between the ingestion
// pipeline and its persistence collaborators. The pipeline never touches a
// database directly; everything flows through these contracts so tests can
// substitute in-memory doubles and callers can swap the store.
package service

import (
	"context"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// RuleStore persists learned classification and match rules. All lookups are
// scoped to one tenant and to active (non-soft-deleted) rules; when several
// rules qualify, implementations must order by usage count descending, then
// creation time ascending, then id, so ties resolve deterministically to the
// oldest rule.
type RuleStore interface {
	// FindCategoryRule returns the active rule for tenant+keyword, or nil.
	FindCategoryRule(ctx context.Context, tenantID, keyword string) (*model.CategoryRule, error)
	// UpsertCategoryRule inserts or updates a rule.
	UpsertCategoryRule(ctx context.Context, rule *model.CategoryRule) error
	// FindRecurringMatchRule returns the active rule for tenant+keyword, or nil.
	FindRecurringMatchRule(ctx context.Context, tenantID, keyword string) (*model.RecurringMatchRule, error)
	// UpsertRecurringMatchRule inserts or updates a rule.
	UpsertRecurringMatchRule(ctx context.Context, rule *model.RecurringMatchRule) error
	// ActiveRecurringMatchRules lists every active rule for the tenant, for
	// the matcher's substring scan.
	ActiveRecurringMatchRules(ctx context.Context, tenantID string) ([]model.RecurringMatchRule, error)
}

// LookupStore provides read-only access to the tenant's classification and
// matching targets.
type LookupStore interface {
	// ActiveCategories lists active categories of one direction.
	ActiveCategories(ctx context.Context, tenantID string, categoryType model.CategoryType) ([]model.Category, error)
	// ActiveRecurringTransactions lists active templates of one direction.
	ActiveRecurringTransactions(ctx context.Context, tenantID string, categoryType model.CategoryType) ([]model.RecurringTransaction, error)
	// RecurringTransactionByID returns a template by id, or nil when it no
	// longer exists.
	RecurringTransactionByID(ctx context.Context, tenantID string, id int64) (*model.RecurringTransaction, error)
	// OpenReceivables lists open receivables from the most recent three
	// snapshot dates.
	OpenReceivables(ctx context.Context, tenantID string) ([]model.Receivable, error)
}

// Store is the full persistence surface the pipeline wires against.
type Store interface {
	RuleStore
	LookupStore
}
