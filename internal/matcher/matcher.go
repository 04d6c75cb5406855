// Package matcher links imported transactions to recurring-payment templates
// and open receivables. Matching is a cascade: a learned rule short-circuit,
// then direct recurring comparison, then receivable comparison, each scoring
// with keyword containment and amount tolerance.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/keywords"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

// AmountTolerance is the relative difference under which two amounts are
// considered similar.
const AmountTolerance = 0.10

// Match confidence levels per tier.
const (
	confidenceLearnedRecurring     = 95
	confidenceRecurringFull        = 90
	confidenceRecurringKeyword     = 60
	confidenceReceivableFull       = 85
	confidenceReceivableAmountOnly = 50
)

// Matcher links staged transactions to matching targets.
type Matcher struct {
	store service.Store
}

// New creates a matcher backed by the given store.
func New(store service.Store) *Matcher {
	return &Matcher{store: store}
}

// Match mutates transactions in place. Transactions that already carry a
// match or have a zero amount are skipped. Only storage failures surface as
// errors; an unmatched transaction keeps MatchType None.
func (m *Matcher) Match(ctx context.Context, txns []*model.ImportedTransaction, tenantID string) error {
	if len(txns) == 0 {
		return nil
	}

	rules, err := m.store.ActiveRecurringMatchRules(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load recurring match rules: %w", err)
	}

	// Learned matches may settle the category too, so the tenant's category
	// names are needed to stage a complete suggestion.
	var categoryNames map[int64]string
	if len(rules) > 0 {
		categoryNames, err = m.loadCategoryNames(ctx, tenantID)
		if err != nil {
			return err
		}
	}

	matched := 0
	for _, txn := range txns {
		if txn.MatchType != "" && txn.MatchType != model.MatchNone {
			continue
		}
		if txn.Amount == 0 {
			continue
		}
		txn.MatchType = model.MatchNone

		hit, err := m.applyLearnedRule(ctx, txn, tenantID, rules, categoryNames)
		if err != nil {
			return err
		}
		if hit {
			matched++
			continue
		}

		hit, err = m.applyDirectRecurring(ctx, txn, tenantID)
		if err != nil {
			return err
		}
		if hit {
			matched++
			continue
		}

		if txn.Amount > 0 {
			hit, err = m.applyReceivable(ctx, txn, tenantID)
			if err != nil {
				return err
			}
			if hit {
				matched++
			}
		}
	}

	slog.Info("matched transactions",
		"tenant", tenantID,
		"total", len(txns),
		"matched", matched)
	return nil
}

// loadCategoryNames maps the tenant's active category ids to names, both
// directions.
func (m *Matcher) loadCategoryNames(ctx context.Context, tenantID string) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, categoryType := range []model.CategoryType{model.CategoryTypeExpense, model.CategoryTypeIncome} {
		cats, err := m.store.ActiveCategories(ctx, tenantID, categoryType)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		for _, cat := range cats {
			names[cat.ID] = cat.Name
		}
	}
	return names, nil
}

// applyLearnedRule scans the tenant's learned rules for a keyword contained
// in the description. Longest keyword wins, then highest usage count. The
// referenced template must still exist and be active; a match is considered
// confirmed without user review.
func (m *Matcher) applyLearnedRule(ctx context.Context, txn *model.ImportedTransaction, tenantID string, rules []model.RecurringMatchRule, categoryNames map[int64]string) (bool, error) {
	description := strings.ToLower(txn.Description)

	var best *model.RecurringMatchRule
	for i := range rules {
		rule := &rules[i]
		if !strings.Contains(description, rule.Keyword) {
			continue
		}
		if best == nil || betterMatchRule(rule, best) {
			best = rule
		}
	}
	if best == nil {
		return false, nil
	}

	tmpl, err := m.store.RecurringTransactionByID(ctx, tenantID, best.RecurringID)
	if err != nil {
		return false, fmt.Errorf("failed to load recurring transaction: %w", err)
	}
	if tmpl == nil || !tmpl.IsActive {
		slog.Debug("learned match rule targets inactive template",
			"keyword", best.Keyword, "recurring_id", best.RecurringID)
		return false, nil
	}

	bindRecurring(txn, tmpl, best.Confidence())
	txn.IsMatchConfirmed = true

	// A learned match may also settle the category, but never overrides an
	// existing suggestion. The category must still exist for the tenant,
	// same as the categorizer's learned tier.
	if tmpl.CategoryID != nil && txn.SuggestedCategoryID == nil {
		if name, ok := categoryNames[*tmpl.CategoryID]; ok {
			id := *tmpl.CategoryID
			txn.SuggestedCategoryID = &id
			txn.SuggestedCategoryName = name
			txn.Confidence = best.Confidence()
			txn.IsLearnedRule = true
		}
	}
	return true, nil
}

func betterMatchRule(a, b *model.RecurringMatchRule) bool {
	if len(a.Keyword) != len(b.Keyword) {
		return len(a.Keyword) > len(b.Keyword)
	}
	return a.UsageCount > b.UsageCount
}

// applyDirectRecurring compares the transaction against direction-matched
// active templates. Keyword containment is required; amount similarity
// upgrades the confidence. An amount match on its own is not evidence: too
// many unrelated charges share a price point.
func (m *Matcher) applyDirectRecurring(ctx context.Context, txn *model.ImportedTransaction, tenantID string) (bool, error) {
	templates, err := m.store.ActiveRecurringTransactions(ctx, tenantID, model.CategoryTypeForAmount(txn.Amount))
	if err != nil {
		return false, fmt.Errorf("failed to load recurring transactions: %w", err)
	}

	description := strings.ToLower(txn.Description)
	for i := range templates {
		tmpl := &templates[i]
		if !keywordContained(tmpl.Name, description) {
			continue
		}
		confidence := confidenceRecurringKeyword
		if AmountSimilar(math.Abs(txn.Amount), math.Abs(tmpl.Amount)) {
			confidence = confidenceRecurringFull
		}
		bindRecurring(txn, tmpl, confidence)
		return true, nil
	}
	return false, nil
}

// applyReceivable compares positive transactions against open receivables
// from the recent snapshot window. Amount similarity is required here;
// keyword containment upgrades the confidence.
func (m *Matcher) applyReceivable(ctx context.Context, txn *model.ImportedTransaction, tenantID string) (bool, error) {
	receivables, err := m.store.OpenReceivables(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to load receivables: %w", err)
	}

	description := strings.ToLower(txn.Description)
	for i := range receivables {
		rcv := &receivables[i]
		if !AmountSimilar(txn.Amount, rcv.Amount) {
			continue
		}
		confidence := confidenceReceivableAmountOnly
		if keywordContained(rcv.Description, description) {
			confidence = confidenceReceivableFull
		}

		id := rcv.ID
		txn.MatchType = model.MatchReceivable
		txn.MatchedEntityID = &id
		txn.MatchedEntityName = rcv.Description
		txn.MatchConfidence = confidence
		return true, nil
	}
	return false, nil
}

func bindRecurring(txn *model.ImportedTransaction, tmpl *model.RecurringTransaction, confidence int) {
	id := tmpl.ID
	txn.MatchType = model.MatchRecurring
	txn.MatchedEntityID = &id
	txn.MatchedEntityName = tmpl.Name
	txn.MatchConfidence = confidence
}

// keywordContained reports whether any keyword extracted from name appears
// as a substring of the lowercased description.
func keywordContained(name, description string) bool {
	for _, kw := range keywords.Extract(name) {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

// AmountSimilar reports whether a is within AmountTolerance of base,
// relative to base. A zero base is never similar; that keeps the formula
// total without dividing by zero.
func AmountSimilar(a, base float64) bool {
	if base == 0 {
		return false
	}
	return math.Abs(a-base)/math.Abs(base) <= AmountTolerance
}
