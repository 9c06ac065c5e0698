package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

func newTestOrchestrator(provider fakeProvider, searcher fakeSearcher) *Orchestrator {
	cache := newFakeCache()
	return NewOrchestrator(
		NewAnalyzer(provider),
		NewGiftAgent(searcher, provider, cache),
		NewValueAgent(searcher, provider, cache),
		NewBundleAgent(searcher, provider, cache),
		NewReviewAgent(searcher, provider, cache),
		NewTrendAgent(searcher, provider, cache),
	)
}

func TestOrchestrator_Run_ClarifiesBeforeRoutingWhenFieldsMissing(t *testing.T) {
	o := newTestOrchestrator(fakeProvider{reply: `{"intent":"GIFT","confidence":0.8}`}, fakeSearcher{})

	outcome := o.Run(context.Background(), "s1", nil, "선물 추천해줘", "", 0)

	assert.Equal(t, StepAwaitingClarification, outcome.Step)
	assert.Equal(t, "recipient", outcome.ClarificationField)
	assert.Nil(t, outcome.Gift)
}

func TestOrchestrator_Run_RoutesToAgentOnceClarifyCountReachesTwo(t *testing.T) {
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("a", 10_000)}}
	o := newTestOrchestrator(fakeProvider{}, searcher)
	o.analyzer = NewAnalyzer(fakeProvider{reply: `{"intent":"GIFT","confidence":0.8}`})
	o.gift = NewGiftAgent(searcher, fakeProvider{reply: `{"items":[]}`}, newFakeCache())

	outcome := o.Run(context.Background(), "s1", nil, "선물 추천해줘", "", 2)

	assert.NotEqual(t, StepAwaitingClarification, outcome.Step)
	assert.Equal(t, StepGiftCompleted, outcome.Step)
}

func TestOrchestrator_Run_RoutesValueIntentToValueAgent(t *testing.T) {
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("a", 10_000)}}
	analysisReply := `{"intent":"VALUE","confidence":0.9,"items":["키보드"],"search_keywords":["가성비 키보드"]}`
	valueReply := `{"budget_tier":[],"standard_tier":[],"premium_tier":[]}`

	o := newTestOrchestrator(fakeProvider{}, searcher)
	o.analyzer = NewAnalyzer(fakeProvider{reply: analysisReply})
	o.value = NewValueAgent(searcher, fakeProvider{reply: valueReply}, newFakeCache())

	outcome := o.Run(context.Background(), "s1", nil, "가성비 키보드 추천해줘", "", 0)

	require.NoError(t, outcome.Err)
	assert.Equal(t, StepValueCompleted, outcome.Step)
	require.NotNil(t, outcome.Value)
}

func TestOrchestrator_Run_UnknownIntentDefaultsToValue(t *testing.T) {
	searcher := fakeSearcher{items: []domain.ProductCandidate{product("a", 10_000)}}
	o := newTestOrchestrator(fakeProvider{}, searcher)
	o.analyzer = NewAnalyzer(fakeProvider{reply: `{"intent":"NOPE","items":["키보드"]}`})
	o.value = NewValueAgent(searcher, fakeProvider{reply: `{"budget_tier":[],"standard_tier":[],"premium_tier":[]}`}, newFakeCache())

	outcome := o.Run(context.Background(), "s1", nil, "아무거나", "", 0)

	assert.Equal(t, domain.IntentValue, outcome.Intent)
	assert.Equal(t, StepValueCompleted, outcome.Step)
}
