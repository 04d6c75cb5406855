package categorizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/model"
	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

const testTenant = "fam-1"

func testStore() *service.MockStore {
	store := service.NewMockStore()
	store.Categories = []model.Category{
		{ID: 1, TenantID: testTenant, Name: "Shopping", Type: model.CategoryTypeExpense, IsActive: true},
		{ID: 2, TenantID: testTenant, Name: "Groceries", Type: model.CategoryTypeExpense, IsActive: true},
		{ID: 3, TenantID: testTenant, Name: "Subscriptions", Type: model.CategoryTypeExpense, IsActive: true},
		{ID: 10, TenantID: testTenant, Name: "Stipendio", Type: model.CategoryTypeIncome, IsActive: true},
		{ID: 11, TenantID: testTenant, Name: "Bonifici", Type: model.CategoryTypeIncome, IsActive: true},
	}
	return store
}

func TestCategorize_RawCategoryWinsOverLearnedRule(t *testing.T) {
	store := testStore()
	// A heavily reinforced learned rule for the same description.
	require.NoError(t, store.UpsertCategoryRule(context.Background(), &model.CategoryRule{
		TenantID: testTenant, Keyword: "esselunga", CategoryID: 3, UsageCount: 99, IsActive: true,
	}))

	txn := &model.ImportedTransaction{
		Description: "ESSELUNGA MILANO",
		Amount:      -54.30,
		RawCategory: "groceries", // case-insensitive match
	}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	require.NotNil(t, txn.SuggestedCategoryID)
	assert.Equal(t, int64(2), *txn.SuggestedCategoryID)
	assert.Equal(t, "Groceries", txn.SuggestedCategoryName)
	assert.Equal(t, 100, txn.Confidence)
	assert.False(t, txn.IsLearnedRule)
}

func TestCategorize_LearnedRule(t *testing.T) {
	store := testStore()
	require.NoError(t, store.UpsertCategoryRule(context.Background(), &model.CategoryRule{
		TenantID: testTenant, Keyword: "esselunga", CategoryID: 2, UsageCount: 3, IsActive: true,
	}))

	txn := &model.ImportedTransaction{Description: "PAGAMENTO POS ESSELUNGA MILANO", Amount: -54.30}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	require.NotNil(t, txn.SuggestedCategoryID)
	assert.Equal(t, int64(2), *txn.SuggestedCategoryID)
	assert.Equal(t, 90, txn.Confidence, "usage 3 sits in the middle tier")
	assert.True(t, txn.IsLearnedRule)
}

func TestCategorize_LearnedRulePrefersHigherUsage(t *testing.T) {
	store := testStore()
	require.NoError(t, store.UpsertCategoryRule(context.Background(), &model.CategoryRule{
		TenantID: testTenant, Keyword: "esselunga", CategoryID: 2, UsageCount: 6, IsActive: true,
	}))
	require.NoError(t, store.UpsertCategoryRule(context.Background(), &model.CategoryRule{
		TenantID: testTenant, Keyword: "milano", CategoryID: 1, UsageCount: 1, IsActive: true,
	}))

	txn := &model.ImportedTransaction{Description: "ESSELUNGA MILANO", Amount: -10}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	require.NotNil(t, txn.SuggestedCategoryID)
	assert.Equal(t, int64(2), *txn.SuggestedCategoryID)
	assert.Equal(t, 95, txn.Confidence)
}

func TestCategorize_StaticExpenseHeuristic(t *testing.T) {
	store := testStore()
	txn := &model.ImportedTransaction{
		Description: "PAGAMENTO POS AMAZON 12/05/24 45,99",
		Amount:      -45.99,
	}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	require.NotNil(t, txn.SuggestedCategoryID)
	assert.Equal(t, "Shopping", txn.SuggestedCategoryName)
	assert.Equal(t, 80, txn.Confidence)
	assert.False(t, txn.IsLearnedRule)
}

func TestCategorize_StaticHeuristicSkipsIncomeRows(t *testing.T) {
	store := testStore()
	txn := &model.ImportedTransaction{Description: "REFUND AMAZON", Amount: 45.99}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	assert.Nil(t, txn.SuggestedCategoryID, "expense triggers must not fire on income rows")
}

func TestCategorize_ZeroAmountClassifiesAsExpense(t *testing.T) {
	store := testStore()
	shopping := &model.ImportedTransaction{Description: "PAGAMENTO POS AMAZON", Amount: 0}
	transfer := &model.ImportedTransaction{Description: "BONIFICO STORNO", Amount: 0}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{shopping, transfer}, testTenant))

	require.NotNil(t, shopping.SuggestedCategoryID)
	assert.Equal(t, "Shopping", shopping.SuggestedCategoryName)

	assert.Nil(t, transfer.SuggestedCategoryID, "income vocabulary must not fire on a non-positive amount")
}

func TestCategorize_IncomeHeuristics(t *testing.T) {
	store := testStore()
	salary := &model.ImportedTransaction{Description: "ACCREDITO STIPENDIO FEBBRAIO", Amount: 1850}
	transfer := &model.ImportedTransaction{Description: "BONIFICO DA MARIO ROSSI", Amount: 200}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{salary, transfer}, testTenant))

	require.NotNil(t, salary.SuggestedCategoryID)
	assert.Equal(t, "Stipendio", salary.SuggestedCategoryName)
	assert.Equal(t, 90, salary.Confidence)

	require.NotNil(t, transfer.SuggestedCategoryID)
	assert.Equal(t, "Bonifici", transfer.SuggestedCategoryName)
	assert.Equal(t, 50, transfer.Confidence)
}

func TestCategorize_NoHitLeavesUnclassified(t *testing.T) {
	store := testStore()
	txn := &model.ImportedTransaction{Description: "XYZZY", Amount: -5}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	assert.Nil(t, txn.SuggestedCategoryID)
	assert.Equal(t, 0, txn.Confidence)
}

func TestCategorize_Idempotent(t *testing.T) {
	store := testStore()
	existing := int64(3)
	txn := &model.ImportedTransaction{
		Description:           "PAGAMENTO POS AMAZON",
		Amount:                -45.99,
		SuggestedCategoryID:   &existing,
		SuggestedCategoryName: "Subscriptions",
		Confidence:            95,
	}

	c := New(store)
	require.NoError(t, c.Categorize(context.Background(), []*model.ImportedTransaction{txn}, testTenant))

	assert.Equal(t, int64(3), *txn.SuggestedCategoryID)
	assert.Equal(t, "Subscriptions", txn.SuggestedCategoryName)
	assert.Equal(t, 95, txn.Confidence)
}
