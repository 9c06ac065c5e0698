package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestGiftAgent_Run_BuildsCardsAndSummary(t *testing.T) {
	products := []domain.ProductCandidate{product("a", 30_000), product("b", 40_000), product("c", 50_000)}
	reply := `{
		"recommendations": [{"product_id":"a","recommendation_reason":"동료에게 실용적입니다."}],
		"recipient_summary": "30대 남성 동료 (퇴사)",
		"occasion": "farewell"
	}`
	relation := "colleague"
	gender := "male"
	ageGroup := "30대"
	occasion := "farewell"
	agent := NewGiftAgent(fakeSearcher{items: products}, fakeProvider{reply: reply}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID: "s1",
		RawQuery:  "30대 남자 동료 퇴사 선물",
		Requirements: domain.Requirements{
			Recipient: &domain.RecipientInfo{Relation: &relation, Gender: &gender, AgeGroup: &ageGroup, Occasion: &occasion},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "30대 남성 동료 (퇴사)", result.Recommendation.RecipientSummary)
	assert.Equal(t, "farewell", result.Recommendation.Occasion)
	require.GreaterOrEqual(t, len(result.Recommendation.Cards), 3)
}

func TestGiftAgent_Run_EmptySearchReturnsUpstreamUnavailable(t *testing.T) {
	agent := NewGiftAgent(fakeSearcher{items: nil}, fakeProvider{}, newFakeCache())

	_, err := agent.Run(context.Background(), Input{SessionID: "s1"})

	require.Error(t, err)
}

func TestGenerateGiftSearchQueries_FallsBackWhenNoRecipient(t *testing.T) {
	queries := generateGiftSearchQueries(domain.Requirements{})

	assert.Equal(t, []string{"인기선물", "베스트선물", "추천선물"}, queries)
}
