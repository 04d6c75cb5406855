package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccardomerenda/FamilyFinance-sub000/internal/service"
)

const testTenant = "fam-1"

func TestLearnCategory_CreatesRulePerKeyword(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)

	err := e.LearnCategory(context.Background(), testTenant, "PAGAMENTO POS ESSELUNGA MILANO", 2)
	require.NoError(t, err)

	// "pagamento" and "pos" are stop words; the counterparty tokens remain.
	esselunga := store.CategoryRuleFor(testTenant, "esselunga")
	require.NotNil(t, esselunga)
	assert.Equal(t, int64(2), esselunga.CategoryID)
	assert.Equal(t, 1, esselunga.UsageCount)
	assert.True(t, esselunga.IsActive)

	milano := store.CategoryRuleFor(testTenant, "milano")
	require.NotNil(t, milano)
	assert.Equal(t, int64(2), milano.CategoryID)

	assert.Nil(t, store.CategoryRuleFor(testTenant, "pagamento"))
}

func TestLearnCategory_ReinforcesSameTarget(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)
	ctx := context.Background()

	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))
	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))
	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))

	rule := store.CategoryRuleFor(testTenant, "esselunga")
	require.NotNil(t, rule)
	assert.Equal(t, 3, rule.UsageCount)
}

func TestLearnCategory_CorrectsLowUsageRule(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)
	ctx := context.Background()

	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))

	// One observation only: the contradiction wins and resets usage.
	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 5))

	rule := store.CategoryRuleFor(testTenant, "esselunga")
	require.NotNil(t, rule)
	assert.Equal(t, int64(5), rule.CategoryID)
	assert.Equal(t, 1, rule.UsageCount)
}

func TestLearnCategory_ProtectsEstablishedRule(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)
	ctx := context.Background()

	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))
	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 2))

	// Usage is now 2, above the protection threshold: the outlier is ignored.
	require.NoError(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 5))

	rule := store.CategoryRuleFor(testTenant, "esselunga")
	require.NotNil(t, rule)
	assert.Equal(t, int64(2), rule.CategoryID)
	assert.Equal(t, 2, rule.UsageCount)
}

func TestLearnCategory_NoKeywordsIsANoOp(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)

	assert.NoError(t, e.LearnCategory(context.Background(), testTenant, "POS 12/05/24 45,99", 2))
}

func TestLearnCategory_Validation(t *testing.T) {
	e := New(service.NewMockStore())
	ctx := context.Background()

	assert.Error(t, e.LearnCategory(ctx, "", "ESSELUNGA", 2))
	assert.Error(t, e.LearnCategory(ctx, testTenant, "ESSELUNGA", 0))
}

func TestLearnRecurringMatch_KeepsLongestToken(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)

	err := e.LearnRecurringMatch(context.Background(), testTenant, "SDD NETFLIX.COM AMSTERDAM", 1)
	require.NoError(t, err)

	rule := store.RecurringMatchRuleFor(testTenant, "amsterdam")
	require.NotNil(t, rule, "the longest token becomes the rule keyword")
	assert.Equal(t, int64(1), rule.RecurringID)
	assert.Equal(t, 1, rule.UsageCount)

	assert.Nil(t, store.RecurringMatchRuleFor(testTenant, "netflix"))
}

func TestLearnRecurringMatch_LastWriteWins(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)
	ctx := context.Background()

	require.NoError(t, e.LearnRecurringMatch(ctx, testTenant, "NETFLIX", 1))
	require.NoError(t, e.LearnRecurringMatch(ctx, testTenant, "NETFLIX", 1))
	require.NoError(t, e.LearnRecurringMatch(ctx, testTenant, "NETFLIX", 2))

	rule := store.RecurringMatchRuleFor(testTenant, "netflix")
	require.NotNil(t, rule)
	assert.Equal(t, int64(2), rule.RecurringID, "a repeat confirmation retargets the rule")
	assert.Equal(t, 3, rule.UsageCount)
}

func TestLearnRecurringMatch_FallsBackToFullDescription(t *testing.T) {
	store := service.NewMockStore()
	e := New(store)

	// Everything here is stripped or stopped; the raw description is used.
	require.NoError(t, e.LearnRecurringMatch(context.Background(), testTenant, "POS 4512", 1))

	rule := store.RecurringMatchRuleFor(testTenant, "pos 4512")
	require.NotNil(t, rule)
	assert.Equal(t, int64(1), rule.RecurringID)
}

func TestLearnRecurringMatch_Validation(t *testing.T) {
	e := New(service.NewMockStore())
	ctx := context.Background()

	assert.Error(t, e.LearnRecurringMatch(ctx, "", "NETFLIX", 1))
	assert.Error(t, e.LearnRecurringMatch(ctx, testTenant, "NETFLIX", 0))
}
