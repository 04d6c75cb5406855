// Package learning adapts future classification and matching from confirmed
// user decisions. Every confirmation either reinforces an existing rule or
// creates a new one; rules that have been reinforced more than once are
// protected from a single contradicting correction.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/keywords"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

// protectedUsage is the usage count above which a category rule no longer
// yields to a contradicting correction.
const protectedUsage = 1

// Engine records confirmed categorizations and matches as rules.
type Engine struct {
	store service.RuleStore
}

// New creates a learning engine backed by the given rule store.
func New(store service.RuleStore) *Engine {
	return &Engine{store: store}
}

// LearnCategory records a confirmed description-to-category decision. Each
// extracted keyword is upserted independently: same target increments usage;
// a different target overwrites only while the existing rule is still at low
// usage; otherwise the established rule stands. Safe to call repeatedly.
func (e *Engine) LearnCategory(ctx context.Context, tenantID, description string, categoryID int64) error {
	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("tenant id is required")
	}
	if categoryID <= 0 {
		return fmt.Errorf("category id is required")
	}

	kws := keywords.Extract(description)
	if len(kws) == 0 {
		slog.Debug("no keywords to learn from", "description", description)
		return nil
	}

	for _, kw := range kws {
		existing, err := e.store.FindCategoryRule(ctx, tenantID, kw)
		if err != nil {
			return fmt.Errorf("failed to look up rule for %q: %w", kw, err)
		}

		switch {
		case existing == nil:
			rule := &model.CategoryRule{
				TenantID:   tenantID,
				Keyword:    kw,
				CategoryID: categoryID,
				UsageCount: 1,
				IsActive:   true,
			}
			if err := e.store.UpsertCategoryRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule for %q: %w", kw, err)
			}
			slog.Debug("learned new category rule", "keyword", kw, "category_id", categoryID)

		case existing.CategoryID == categoryID:
			existing.UsageCount++
			if err := e.store.UpsertCategoryRule(ctx, existing); err != nil {
				return fmt.Errorf("failed to reinforce rule for %q: %w", kw, err)
			}

		case existing.UsageCount <= protectedUsage:
			// Low-usage rule contradicted: treat as a correction.
			existing.CategoryID = categoryID
			existing.UsageCount = 1
			if err := e.store.UpsertCategoryRule(ctx, existing); err != nil {
				return fmt.Errorf("failed to correct rule for %q: %w", kw, err)
			}
			slog.Debug("corrected category rule", "keyword", kw, "category_id", categoryID)

		default:
			// Established rule, single outlier: leave it alone.
			slog.Debug("keeping established category rule",
				"keyword", kw,
				"existing_category_id", existing.CategoryID,
				"usage", existing.UsageCount)
		}
	}
	return nil
}

// LearnRecurringMatch records a confirmed description-to-template link. Only
// the single longest extracted token becomes the rule keyword, falling back
// to the full lowercased description when extraction yields nothing. A
// repeat observation increments usage and retargets: last write wins.
func (e *Engine) LearnRecurringMatch(ctx context.Context, tenantID, description string, recurringID int64) error {
	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("tenant id is required")
	}
	if recurringID <= 0 {
		return fmt.Errorf("recurring id is required")
	}

	keyword := keywords.Longest(description)
	if keyword == "" {
		keyword = strings.ToLower(strings.TrimSpace(description))
	}
	if keyword == "" {
		slog.Debug("nothing to learn from empty description")
		return nil
	}

	existing, err := e.store.FindRecurringMatchRule(ctx, tenantID, keyword)
	if err != nil {
		return fmt.Errorf("failed to look up match rule for %q: %w", keyword, err)
	}

	rule := &model.RecurringMatchRule{
		TenantID:    tenantID,
		Keyword:     keyword,
		RecurringID: recurringID,
		UsageCount:  1,
		IsActive:    true,
	}
	if existing != nil {
		rule = existing
		rule.RecurringID = recurringID
		rule.UsageCount++
	}

	if err := e.store.UpsertRecurringMatchRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to save match rule for %q: %w", keyword, err)
	}
	slog.Debug("learned recurring match rule", "keyword", keyword, "recurring_id", recurringID)
	return nil
}
