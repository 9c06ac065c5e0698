package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func TestReviewAgent_Run_ParsesComplaintsAndSentiment(t *testing.T) {
	reply := `{
		"product_category": "에어프라이어",
		"top_complaints": [{"rank":1,"issue":"세척이 번거로움","frequency":"많음","severity":"medium"}],
		"not_recommended_conditions": ["1인 가구 소형 모델은 비추천"],
		"management_tips": ["기름때는 바로 닦기"],
		"overall_sentiment": "positive"
	}`
	agent := NewReviewAgent(fakeSearcher{items: []domain.ProductCandidate{product("af-1", 80_000)}}, fakeProvider{reply: reply}, newFakeCache())

	result, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		RawQuery:     "에어프라이어 사도 돼?",
		Requirements: domain.Requirements{Items: []string{"에어프라이어"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "에어프라이어", result.Analysis.ProductCategory)
	assert.Equal(t, "positive", result.Analysis.OverallSentiment)
	require.Len(t, result.Analysis.TopComplaints, 1)
	assert.Equal(t, "세척이 번거로움", result.Analysis.TopComplaints[0].Issue)
	assert.NotEmpty(t, result.Analysis.Disclaimer)
}

func TestReviewAgent_Run_NoCategoryIsValidationError(t *testing.T) {
	agent := NewReviewAgent(fakeSearcher{}, fakeProvider{}, newFakeCache())

	_, err := agent.Run(context.Background(), Input{SessionID: "s1"})

	require.Error(t, err)
}

func TestReviewAgent_Run_FallsBackToDefaultComplaintWhenLLMReturnsNone(t *testing.T) {
	agent := NewReviewAgent(
		fakeSearcher{items: []domain.ProductCandidate{product("af-1", 80_000)}},
		fakeProvider{reply: `{"product_category":"에어프라이어","top_complaints":[]}`},
		newFakeCache(),
	)

	result, err := agent.Run(context.Background(), Input{
		SessionID:    "s1",
		Requirements: domain.Requirements{Items: []string{"에어프라이어"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Analysis.TopComplaints, 1)
	assert.Equal(t, "구체적인 리뷰 정보가 부족합니다", result.Analysis.TopComplaints[0].Issue)
}

func TestExtractReviewCategory_StripsQuestionPhrasing(t *testing.T) {
	category := extractReviewCategory(domain.Requirements{}, []string{"에어프라이어 사도 돼?"})

	assert.Equal(t, "에어프라이어", category)
}
