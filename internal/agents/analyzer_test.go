package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

type fakeProvider struct {
	reply string
	err   error
}

func (f fakeProvider) Generate(ctx context.Context, messages []domain.Message, opts ai.GenerateOptions) (string, error) {
	return f.reply, f.err
}

func TestAnalyze_ParsesKnownIntent(t *testing.T) {
	reply := `{"intent":"VALUE","confidence":0.9,"items":["키보드"],"search_keywords":["가성비 키보드"]}`
	a := NewAnalyzer(fakeProvider{reply: reply})

	result := a.Analyze(context.Background(), nil, "가성비 키보드 추천해줘", 0)

	assert.Equal(t, domain.IntentValue, result.Intent)
	assert.Equal(t, 0.9, result.Confidence)
	assert.False(t, result.ClarificationNeeded)
	assert.Equal(t, []string{"키보드"}, result.Requirements.Items)
}

func TestAnalyze_UnknownIntentFallsBackToValue(t *testing.T) {
	reply := `{"intent":"NOT_A_REAL_INTENT","items":["키보드"]}`
	a := NewAnalyzer(fakeProvider{reply: reply})

	result := a.Analyze(context.Background(), nil, "x", 0)

	assert.Equal(t, domain.IntentValue, result.Intent)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestAnalyze_GiftMissingRecipientAsksClarification(t *testing.T) {
	reply := `{"intent":"GIFT","confidence":0.8}`
	a := NewAnalyzer(fakeProvider{reply: reply})

	result := a.Analyze(context.Background(), nil, "선물 추천해줘", 0)

	require.True(t, result.ClarificationNeeded)
	assert.Equal(t, "recipient", result.ClarificationField)
	assert.Equal(t, 1, result.Requirements.ClarifyCount)
}

func TestAnalyze_ClarifyCountCarriesOverAndCapsAtTwo(t *testing.T) {
	reply := `{"intent":"GIFT","confidence":0.8}`
	a := NewAnalyzer(fakeProvider{reply: reply})

	result := a.Analyze(context.Background(), nil, "선물 추천해줘", 1)
	require.True(t, result.ClarificationNeeded)
	assert.Equal(t, 2, result.Requirements.ClarifyCount)

	result = a.Analyze(context.Background(), nil, "선물 추천해줘", 2)
	require.False(t, result.ClarificationNeeded)
	assert.Equal(t, 2, result.Requirements.ClarifyCount)
}

func TestAnalyze_ProviderErrorFallsBackToValueAt03(t *testing.T) {
	a := NewAnalyzer(fakeProvider{err: assert.AnError})

	result := a.Analyze(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "아무거나"}}, "", 0)

	assert.Equal(t, domain.IntentValue, result.Intent)
	assert.Equal(t, 0.3, result.Confidence)
	assert.True(t, result.ClarificationNeeded)
	assert.Equal(t, "items", result.ClarificationField)
}

func TestAnalyze_MalformedJSONFallsBack(t *testing.T) {
	a := NewAnalyzer(fakeProvider{reply: "this is not json at all"})

	result := a.Analyze(context.Background(), nil, "키보드", 0)

	assert.Equal(t, domain.IntentValue, result.Intent)
	assert.Equal(t, 0.3, result.Confidence)
}

func TestMissingFields_BundleRequiresTwoItemsAndTotalBudget(t *testing.T) {
	total := int64(100000)
	reqs := domain.Requirements{
		Items:  []string{"노트북"},
		Budget: &domain.BudgetRange{TotalBudget: &total},
	}
	missing := MissingFields(reqs, domain.IntentBundle)
	assert.Contains(t, missing, "items")
	assert.NotContains(t, missing, "budget")
}

func TestMissingFields_BundleAcceptsMaxPriceInPlaceOfTotalBudget(t *testing.T) {
	maxPrice := int64(100000)
	reqs := domain.Requirements{
		Items:  []string{"노트북", "마우스"},
		Budget: &domain.BudgetRange{MaxPrice: &maxPrice},
	}
	missing := MissingFields(reqs, domain.IntentBundle)
	assert.NotContains(t, missing, "budget")
}

func TestMissingFields_TrendNeverMissesAnything(t *testing.T) {
	assert.Empty(t, MissingFields(domain.Requirements{}, domain.IntentTrend))
}
