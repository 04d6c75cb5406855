package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
)

const testTenant = "fam-1"

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	var version int
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	assert.NoError(t, s.Migrate(ctx))
}

func TestCreateAndListCategories(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	groceries, err := s.CreateCategory(ctx, testTenant, "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.NotZero(t, groceries.ID)

	_, err = s.CreateCategory(ctx, testTenant, "Stipendio", model.CategoryTypeIncome)
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, "other-family", "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)

	expense, err := s.ActiveCategories(ctx, testTenant, model.CategoryTypeExpense)
	require.NoError(t, err)
	require.Len(t, expense, 1, "other tenants and directions are invisible")
	assert.Equal(t, "Groceries", expense[0].Name)

	income, err := s.ActiveCategories(ctx, testTenant, model.CategoryTypeIncome)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Stipendio", income[0].Name)
}

func TestCategoryRuleRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, testTenant, "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)

	missing, err := s.FindCategoryRule(ctx, testTenant, "esselunga")
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown keyword is nil, not an error")

	rule := &model.CategoryRule{
		TenantID:   testTenant,
		Keyword:    "ESSELUNGA", // stored lowercase
		CategoryID: cat.ID,
		UsageCount: 1,
		IsActive:   true,
	}
	require.NoError(t, s.UpsertCategoryRule(ctx, rule))

	found, err := s.FindCategoryRule(ctx, testTenant, "Esselunga")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "esselunga", found.Keyword)
	assert.Equal(t, cat.ID, found.CategoryID)
	assert.Equal(t, 1, found.UsageCount)
	assert.False(t, found.CreatedAt.IsZero())

	// Upserting the same keyword updates in place.
	found.UsageCount = 4
	require.NoError(t, s.UpsertCategoryRule(ctx, found))

	again, err := s.FindCategoryRule(ctx, testTenant, "esselunga")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, found.ID, again.ID)
	assert.Equal(t, 4, again.UsageCount)
}

func TestCategoryRuleTenantIsolation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, testTenant, "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)
	require.NoError(t, s.UpsertCategoryRule(ctx, &model.CategoryRule{
		TenantID: testTenant, Keyword: "esselunga", CategoryID: cat.ID, UsageCount: 1, IsActive: true,
	}))

	other, err := s.FindCategoryRule(ctx, "other-family", "esselunga")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestFindCategoryRule_IgnoresInactive(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, testTenant, "Groceries", model.CategoryTypeExpense)
	require.NoError(t, err)
	require.NoError(t, s.UpsertCategoryRule(ctx, &model.CategoryRule{
		TenantID: testTenant, Keyword: "esselunga", CategoryID: cat.ID, UsageCount: 1, IsActive: false,
	}))

	found, err := s.FindCategoryRule(ctx, testTenant, "esselunga")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRecurringMatchRuleRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tmpl, err := s.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		TenantID: testTenant, Name: "Netflix", Amount: 15.99, Type: model.CategoryTypeExpense, IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, s.UpsertRecurringMatchRule(ctx, &model.RecurringMatchRule{
		TenantID: testTenant, Keyword: "netflix", RecurringID: tmpl.ID, UsageCount: 1, IsActive: true,
	}))

	found, err := s.FindRecurringMatchRule(ctx, testTenant, "NETFLIX")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tmpl.ID, found.RecurringID)
}

func TestActiveRecurringMatchRules_Ordering(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tmpl, err := s.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		TenantID: testTenant, Name: "Netflix", Amount: 15.99, Type: model.CategoryTypeExpense, IsActive: true,
	})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []model.RecurringMatchRule{
		{TenantID: testTenant, Keyword: "alpha", RecurringID: tmpl.ID, UsageCount: 1, IsActive: true, CreatedAt: base.Add(48 * time.Hour)},
		{TenantID: testTenant, Keyword: "bravo", RecurringID: tmpl.ID, UsageCount: 5, IsActive: true, CreatedAt: base.Add(24 * time.Hour)},
		{TenantID: testTenant, Keyword: "charlie", RecurringID: tmpl.ID, UsageCount: 5, IsActive: true, CreatedAt: base},
		{TenantID: testTenant, Keyword: "stale", RecurringID: tmpl.ID, UsageCount: 9, IsActive: false, CreatedAt: base},
	} {
		rule := r
		require.NoError(t, s.UpsertRecurringMatchRule(ctx, &rule))
	}

	rules, err := s.ActiveRecurringMatchRules(ctx, testTenant)
	require.NoError(t, err)
	require.Len(t, rules, 3, "inactive rules are excluded")

	// Usage first, then the older rule wins the tie.
	assert.Equal(t, "charlie", rules[0].Keyword)
	assert.Equal(t, "bravo", rules[1].Keyword)
	assert.Equal(t, "alpha", rules[2].Keyword)
}

func TestRecurringTransactions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, testTenant, "Subscriptions", model.CategoryTypeExpense)
	require.NoError(t, err)

	tmpl, err := s.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		TenantID: testTenant, Name: "Netflix", Amount: 15.99,
		Type: model.CategoryTypeExpense, CategoryID: &cat.ID, IsActive: true,
	})
	require.NoError(t, err)
	_, err = s.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		TenantID: testTenant, Name: "Old gym", Amount: 40,
		Type: model.CategoryTypeExpense, IsActive: false,
	})
	require.NoError(t, err)

	active, err := s.ActiveRecurringTransactions(ctx, testTenant, model.CategoryTypeExpense)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Netflix", active[0].Name)
	require.NotNil(t, active[0].CategoryID)
	assert.Equal(t, cat.ID, *active[0].CategoryID)

	byID, err := s.RecurringTransactionByID(ctx, testTenant, tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Netflix", byID.Name)

	gone, err := s.RecurringTransactionByID(ctx, testTenant, 9999)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Templates without a category scan cleanly.
	inactive, err := s.RecurringTransactionByID(ctx, testTenant, tmpl.ID+1)
	require.NoError(t, err)
	require.NotNil(t, inactive)
	assert.Nil(t, inactive.CategoryID)
}

func TestOpenReceivables_SnapshotWindow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}
	for _, rcv := range []model.Receivable{
		{TenantID: testTenant, Description: "Too old", Amount: 10, SnapshotDate: day(1), IsOpen: true},
		{TenantID: testTenant, Description: "Window 1", Amount: 20, SnapshotDate: day(2), IsOpen: true},
		{TenantID: testTenant, Description: "Window 2", Amount: 30, SnapshotDate: day(3), IsOpen: true},
		{TenantID: testTenant, Description: "Window 3a", Amount: 40, SnapshotDate: day(4), IsOpen: true},
		{TenantID: testTenant, Description: "Window 3b", Amount: 50, SnapshotDate: day(4), IsOpen: true},
		{TenantID: testTenant, Description: "Settled", Amount: 60, SnapshotDate: day(4), IsOpen: false},
		{TenantID: "other-family", Description: "Elsewhere", Amount: 70, SnapshotDate: day(4), IsOpen: true},
	} {
		r := rcv
		_, err := s.CreateReceivable(ctx, &r)
		require.NoError(t, err)
	}

	open, err := s.OpenReceivables(ctx, testTenant)
	require.NoError(t, err)
	require.Len(t, open, 4, "only the three most recent snapshot dates count")

	var descriptions []string
	for _, rcv := range open {
		descriptions = append(descriptions, rcv.Description)
	}
	assert.ElementsMatch(t, []string{"Window 1", "Window 2", "Window 3a", "Window 3b"}, descriptions)
	assert.Equal(t, "Window 3a", open[0].Description, "newest snapshot first")
}

func TestValidation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.FindCategoryRule(ctx, "", "esselunga")
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = s.FindCategoryRule(ctx, testTenant, "  ")
	assert.ErrorIs(t, err, ErrEmptyString)

	err = s.UpsertCategoryRule(ctx, nil)
	assert.Error(t, err)

	//nolint:staticcheck // nil context is the case under test
	_, err = s.ActiveCategories(nil, testTenant, model.CategoryTypeExpense)
	assert.ErrorIs(t, err, ErrNilContext)
}
