package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestValueAgent_Run_BuildsTieredCardsFromLLMPicks(t *testing.T) {
	products := []domain.ProductCandidate{
		product("a", 10_000), product("b", 20_000), product("c", 30_000),
		product("d", 40_000), product("e", 50_000), product("f", 60_000),
	}
	searcher := fakeSearcher{items: products}
	reply := `{
		"budget_tier": [{"product_id":"a","recommendation_reason":"저렴함","tier_benefits":"가격","tier_tradeoffs":"기능"}],
		"standard_tier": [{"product_id":"c","recommendation_reason":"균형","tier_benefits":"균형","tier_tradeoffs":"-"}],
		"premium_tier": [{"product_id":"f","recommendation_reason":"고급","tier_benefits":"품질","tier_tradeoffs":"가격"}]
	}`
	agent := NewValueAgent(searcher, fakeProvider{reply: reply}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID:      "s1",
		RawQuery:       "가성비 키보드 추천",
		Requirements:   domain.Requirements{Items: []string{"키보드"}},
		SearchKeywords: []string{"가성비 키보드"},
	})

	require.NoError(t, err)
	require.Len(t, result.Recommendation.BudgetTier, 1)
	assert.Equal(t, "a", result.Recommendation.BudgetTier[0].ProductID)
	assert.Equal(t, "budget", result.Recommendation.BudgetTier[0].Tier)
	require.Len(t, result.Recommendation.PremiumTier, 1)
	assert.Equal(t, "f", result.Recommendation.PremiumTier[0].ProductID)
	assert.Equal(t, "키보드", result.Recommendation.Category)
}

func TestValueAgent_Run_EmptySearchReturnsUpstreamUnavailable(t *testing.T) {
	agent := NewValueAgent(fakeSearcher{items: nil}, fakeProvider{}, newFakeCache())

	_, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		Requirements: domain.Requirements{Items: []string{"키보드"}},
	})

	require.Error(t, err)
}

func TestValueAgent_Run_CacheHitSkipsProvider(t *testing.T) {
	cache := newFakeCache()
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("a", 1000)}}
	agent := NewValueAgent(searcher, fakeProvider{reply: `{"budget_tier":[],"standard_tier":[],"premium_tier":[]}`}, cache)

	in := Input{SessionID: "s1", RawQuery: "q", Requirements: domain.Requirements{Items: []string{"키보드"}}}
	first, err := agent.Run(context.Background(), in)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := agent.Run(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Recommendation.Category, second.Recommendation.Category)
}
