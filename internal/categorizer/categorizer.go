// Package categorizer assigns a suggested category and confidence score to
// freshly imported transactions. Classification is a cascade of tiers, each
// an independent strategy evaluated in priority order: exact source-provided
// category, learned rules, the static expense trigger table, and a coarse
// income vocabulary. The first tier that produces a suggestion wins.
package categorizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/keywords"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

// Confidence levels for the static tiers.
const (
	confidenceRawCategory    = 100
	confidenceExpenseTrigger = 80
)

// Categorizer is the tiered auto-classifier.
type Categorizer struct {
	store service.Store
}

// New creates a categorizer backed by the given store.
func New(store service.Store) *Categorizer {
	return &Categorizer{store: store}
}

// tenantCategories caches one tenant's active categories for the duration of
// a single Categorize call.
type tenantCategories struct {
	income  []model.Category
	expense []model.Category
	byID    map[int64]model.Category
}

func (tc *tenantCategories) forAmount(amount float64) []model.Category {
	if amount > 0 {
		return tc.income
	}
	return tc.expense
}

// Categorize mutates each transaction in place with a category suggestion.
// Transactions that already carry a suggestion are left untouched, so the
// call is idempotent. Only storage failures surface as errors; a transaction
// nothing matches simply keeps a zero confidence and no suggestion.
func (c *Categorizer) Categorize(ctx context.Context, txns []*model.ImportedTransaction, tenantID string) error {
	if len(txns) == 0 {
		return nil
	}

	cats, err := c.loadCategories(ctx, tenantID)
	if err != nil {
		return err
	}

	suggested := 0
	for _, txn := range txns {
		if txn.SuggestedCategoryID != nil {
			continue
		}
		if c.applyRawCategory(txn, cats) {
			suggested++
			continue
		}
		hit, err := c.applyLearnedRule(ctx, txn, tenantID, cats)
		if err != nil {
			return err
		}
		if hit {
			suggested++
			continue
		}
		if txn.IsExpense() {
			if applyExpenseHeuristic(txn, cats) {
				suggested++
			}
			continue
		}
		if applyIncomeHeuristic(txn, cats) {
			suggested++
		}
	}

	slog.Info("categorized transactions",
		"tenant", tenantID,
		"total", len(txns),
		"suggested", suggested)
	return nil
}

func (c *Categorizer) loadCategories(ctx context.Context, tenantID string) (*tenantCategories, error) {
	income, err := c.store.ActiveCategories(ctx, tenantID, model.CategoryTypeIncome)
	if err != nil {
		return nil, fmt.Errorf("failed to load income categories: %w", err)
	}
	expense, err := c.store.ActiveCategories(ctx, tenantID, model.CategoryTypeExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense categories: %w", err)
	}

	tc := &tenantCategories{
		income:  income,
		expense: expense,
		byID:    make(map[int64]model.Category, len(income)+len(expense)),
	}
	for _, cat := range income {
		tc.byID[cat.ID] = cat
	}
	for _, cat := range expense {
		tc.byID[cat.ID] = cat
	}
	return tc, nil
}

// applyRawCategory handles the source-provided category string. An exact
// case-insensitive name match against the direction's active categories is
// authoritative and outranks every learned rule.
func (c *Categorizer) applyRawCategory(txn *model.ImportedTransaction, cats *tenantCategories) bool {
	raw := strings.TrimSpace(txn.RawCategory)
	if raw == "" {
		return false
	}
	for _, cat := range cats.forAmount(txn.Amount) {
		if strings.EqualFold(cat.Name, raw) {
			suggest(txn, cat, confidenceRawCategory, false)
			return true
		}
	}
	return false
}

// applyLearnedRule queries the rule store for each extracted keyword and
// keeps the hit with the highest usage count (earliest created wins a tie).
func (c *Categorizer) applyLearnedRule(ctx context.Context, txn *model.ImportedTransaction, tenantID string, cats *tenantCategories) (bool, error) {
	var best *model.CategoryRule
	for _, kw := range keywords.Extract(txn.Description) {
		rule, err := c.store.FindCategoryRule(ctx, tenantID, kw)
		if err != nil {
			return false, fmt.Errorf("failed to look up category rule: %w", err)
		}
		if rule == nil {
			continue
		}
		if best == nil || betterRule(rule, best) {
			best = rule
		}
	}
	if best == nil {
		return false, nil
	}

	cat, ok := cats.byID[best.CategoryID]
	if !ok {
		// Rule outlived its category; treat as a miss.
		slog.Debug("learned rule targets missing category",
			"keyword", best.Keyword, "category_id", best.CategoryID)
		return false, nil
	}

	suggest(txn, cat, best.Confidence(), true)
	return true, nil
}

// betterRule reports whether a should replace b as the winning rule.
func betterRule(a, b *model.CategoryRule) bool {
	if a.UsageCount != b.UsageCount {
		return a.UsageCount > b.UsageCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// applyExpenseHeuristic scans the static trigger table against the
// lowercased raw description. Substring containment, not token match: a
// merchant name split oddly by the bank still triggers.
func applyExpenseHeuristic(txn *model.ImportedTransaction, cats *tenantCategories) bool {
	description := strings.ToLower(txn.Description)
	for _, entry := range expenseHeuristics {
		if !containsAny(description, entry.Triggers) {
			continue
		}
		if cat, ok := findByName(cats.expense, entry.CategoryName); ok {
			suggest(txn, cat, confidenceExpenseTrigger, false)
			return true
		}
	}
	return false
}

// applyIncomeHeuristic checks the coarse income vocabulary.
func applyIncomeHeuristic(txn *model.ImportedTransaction, cats *tenantCategories) bool {
	description := strings.ToLower(txn.Description)
	for _, entry := range incomeHeuristics {
		if !containsAny(description, entry.Triggers) {
			continue
		}
		for _, name := range entry.CategoryNames {
			if cat, ok := findByName(cats.income, name); ok {
				suggest(txn, cat, entry.Confidence, false)
				return true
			}
		}
	}
	return false
}

func suggest(txn *model.ImportedTransaction, cat model.Category, confidence int, learned bool) {
	id := cat.ID
	txn.SuggestedCategoryID = &id
	txn.SuggestedCategoryName = cat.Name
	txn.Confidence = confidence
	txn.IsLearnedRule = learned
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func findByName(cats []model.Category, name string) (model.Category, bool) {
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return model.Category{}, false
}
