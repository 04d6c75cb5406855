package service

import (
	"context"
	"strings"
	"sync"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

// MockStore is an in-memory Store for tests. Rules are keyed by
// (tenant, keyword) exactly like the SQLite implementation.
type MockStore struct {
	mu             sync.Mutex
	categoryRules  map[string]*model.CategoryRule
	recurringRules map[string]*model.RecurringMatchRule
	Categories     []model.Category
	Recurring      []model.RecurringTransaction
	Receivables    []model.Receivable
	nextRuleID     int64
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		categoryRules:  make(map[string]*model.CategoryRule),
		recurringRules: make(map[string]*model.RecurringMatchRule),
	}
}

func ruleKey(tenantID, keyword string) string {
	return tenantID + "|" + strings.ToLower(keyword)
}

// FindCategoryRule implements RuleStore.
func (m *MockStore) FindCategoryRule(_ context.Context, tenantID, keyword string) (*model.CategoryRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.categoryRules[ruleKey(tenantID, keyword)]
	if !ok || !rule.IsActive {
		return nil, nil
	}
	copied := *rule
	return &copied, nil
}

// UpsertCategoryRule implements RuleStore.
func (m *MockStore) UpsertCategoryRule(_ context.Context, rule *model.CategoryRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule.ID == 0 {
		m.nextRuleID++
		rule.ID = m.nextRuleID
	}
	copied := *rule
	copied.Keyword = strings.ToLower(rule.Keyword)
	m.categoryRules[ruleKey(rule.TenantID, rule.Keyword)] = &copied
	return nil
}

// FindRecurringMatchRule implements RuleStore.
func (m *MockStore) FindRecurringMatchRule(_ context.Context, tenantID, keyword string) (*model.RecurringMatchRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule, ok := m.recurringRules[ruleKey(tenantID, keyword)]
	if !ok || !rule.IsActive {
		return nil, nil
	}
	copied := *rule
	return &copied, nil
}

// UpsertRecurringMatchRule implements RuleStore.
func (m *MockStore) UpsertRecurringMatchRule(_ context.Context, rule *model.RecurringMatchRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule.ID == 0 {
		m.nextRuleID++
		rule.ID = m.nextRuleID
	}
	copied := *rule
	copied.Keyword = strings.ToLower(rule.Keyword)
	m.recurringRules[ruleKey(rule.TenantID, rule.Keyword)] = &copied
	return nil
}

// ActiveRecurringMatchRules implements RuleStore.
func (m *MockStore) ActiveRecurringMatchRules(_ context.Context, tenantID string) ([]model.RecurringMatchRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rules []model.RecurringMatchRule
	for _, rule := range m.recurringRules {
		if rule.TenantID == tenantID && rule.IsActive {
			rules = append(rules, *rule)
		}
	}
	return rules, nil
}

// ActiveCategories implements LookupStore.
func (m *MockStore) ActiveCategories(_ context.Context, tenantID string, categoryType model.CategoryType) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cats []model.Category
	for _, cat := range m.Categories {
		if cat.TenantID == tenantID && cat.Type == categoryType && cat.IsActive {
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

// ActiveRecurringTransactions implements LookupStore.
func (m *MockStore) ActiveRecurringTransactions(_ context.Context, tenantID string, categoryType model.CategoryType) ([]model.RecurringTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var templates []model.RecurringTransaction
	for _, tmpl := range m.Recurring {
		if tmpl.TenantID == tenantID && tmpl.Type == categoryType && tmpl.IsActive {
			templates = append(templates, tmpl)
		}
	}
	return templates, nil
}

// RecurringTransactionByID implements LookupStore.
func (m *MockStore) RecurringTransactionByID(_ context.Context, tenantID string, id int64) (*model.RecurringTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tmpl := range m.Recurring {
		if tmpl.TenantID == tenantID && tmpl.ID == id {
			copied := tmpl
			return &copied, nil
		}
	}
	return nil, nil
}

// OpenReceivables implements LookupStore.
func (m *MockStore) OpenReceivables(_ context.Context, tenantID string) ([]model.Receivable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var receivables []model.Receivable
	for _, rcv := range m.Receivables {
		if rcv.TenantID == tenantID && rcv.IsOpen {
			receivables = append(receivables, rcv)
		}
	}
	return receivables, nil
}

// CategoryRuleFor returns the stored rule for inspection in tests.
func (m *MockStore) CategoryRuleFor(tenantID, keyword string) *model.CategoryRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categoryRules[ruleKey(tenantID, keyword)]
}

// RecurringMatchRuleFor returns the stored rule for inspection in tests.
func (m *MockStore) RecurringMatchRuleFor(tenantID, keyword string) *model.RecurringMatchRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recurringRules[ruleKey(tenantID, keyword)]
}
