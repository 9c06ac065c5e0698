package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestCurrentSeason_MapsMonthsToSeasons(t *testing.T) {
	assert.Equal(t, "spring", currentSeason(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "summer", currentSeason(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "fall", currentSeason(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "winter", currentSeason(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTrendAgent_Run_BuildsTrendingItemsFromRecommendedProducts(t *testing.T) {
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("t-1", 90_000), product("t-2", 120_000)}}
	reply := `{
		"trending_items": [{
			"category": "가전",
			"keyword": "에어프라이어",
			"growth_rate": "+50%",
			"period": "최근 1개월",
			"target_segment": "20-30대 1인 가구",
			"why_trending": "SNS 레시피 확산",
			"recommended_products": ["t-1"]
		}]
	}`
	agent := NewTrendAgent(searcher, fakeProvider{reply: reply}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		RawQuery:     "요즘 인기 있는 가전?",
		Requirements: domain.Requirements{Items: []string{"가전"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Signal.TrendingItems, 1)
	item := result.Signal.TrendingItems[0]
	assert.Equal(t, "에어프라이어", item.Keyword)
	require.Len(t, item.Products, 1)
	assert.Equal(t, "t-1", item.Products[0].ProductID)
	assert.Equal(t, "네이버 쇼핑", result.Signal.DataSource)
}

func TestTrendAgent_Run_FallsBackWhenLLMProposesNoItems(t *testing.T) {
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("t-1", 90_000)}}
	agent := NewTrendAgent(searcher, fakeProvider{reply: `{"trending_items":[]}`}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{SessionID: "s1"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Signal.TrendingItems)
}

func TestExtractTrendCategory_DefaultsToAll(t *testing.T) {
	assert.Equal(t, "전체", extractTrendCategory(domain.Requirements{}, nil))
}
