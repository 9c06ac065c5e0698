package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestBundleAgent_Run_AssemblesCombinationFromLLM(t *testing.T) {
	searcher := byCategorySearcher{byQuery: map[string][]domain.ProductCandidate{
		"노트북": {product("laptop-1", 800_000)},
		"마우스": {product("mouse-1", 30_000)},
	}}
	reply := `{
		"combinations": [{
			"combination_id": "A",
			"items": [
				{"item_category":"노트북","selected_product_id":"laptop-1","reason":"가성비 좋음"},
				{"item_category":"마우스","selected_product_id":"mouse-1","reason":"무선"}
			],
			"budget_fit": true
		}]
	}`
	agent := NewBundleAgent(searcher, fakeProvider{reply: reply}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		RawQuery:     "노트북+마우스 100만원",
		Requirements: domain.Requirements{Items: []string{"노트북", "마우스"}, Budget: &domain.BudgetRange{TotalBudget: int64Ptr(1_000_000)}},
	})

	require.NoError(t, err)
	require.Len(t, result.Recommendation.Combinations, 1)
	combo := result.Recommendation.Combinations[0]
	assert.Equal(t, int64(830_000), combo.TotalPrice)
	assert.True(t, combo.BudgetFit)
	assert.Equal(t, 2, result.Recommendation.ItemsCount)
}

func TestBundleAgent_Run_NoItemsIsValidationError(t *testing.T) {
	agent := NewBundleAgent(fakeSearcher{}, fakeProvider{}, newFakeCache())

	_, err := agent.Run(context.Background(), Input{SessionID: "s1"})

	require.Error(t, err)
}

func TestBundleAgent_Run_FallsBackToDefaultCombinationWhenLLMProposesNone(t *testing.T) {
	searcher := byCategorySearcher{byQuery: map[string][]domain.ProductCandidate{
		"키보드": {product("kb-1", 50_000)},
	}}
	agent := NewBundleAgent(searcher, fakeProvider{reply: `{"combinations":[]}`}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		Requirements: domain.Requirements{Items: []string{"키보드"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Recommendation.Combinations, 1)
	assert.Equal(t, "A", result.Recommendation.Combinations[0].CombinationID)
}

func int64Ptr(v int64) *int64 { return &v }
