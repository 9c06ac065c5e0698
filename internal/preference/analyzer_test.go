package preference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyBucket_Thresholds(t *testing.T) {
	assert.Equal(t, "high", frequencyBucket(10))
	assert.Equal(t, "high", frequencyBucket(15))
	assert.Equal(t, "medium", frequencyBucket(3))
	assert.Equal(t, "low", frequencyBucket(2))
	assert.Equal(t, "low", frequencyBucket(0))
}

func TestPriceSensitivity_Thresholds(t *testing.T) {
	assert.Equal(t, "high", priceSensitivity(19_999))
	assert.Equal(t, "medium", priceSensitivity(50_000))
	assert.Equal(t, "low", priceSensitivity(100_001))
}

func TestTopCategoryWeights_SumsToOneAndSortsDescending(t *testing.T) {
	weights := topCategoryWeights(map[string]int{"전자": 6, "의류": 3, "식품": 1}, 10)

	require := assert.New(t)
	require.Len(weights, 3)
	require.Equal("전자", weights[0].Category)
	require.InDelta(0.6, weights[0].Weight, 1e-9)
	require.InDelta(0.3, weights[1].Weight, 1e-9)
	require.InDelta(0.1, weights[2].Weight, 1e-9)
}

func TestExtractKeywords_DropsStopwordsAndSingleOccurrences(t *testing.T) {
	names := []string{
		"무선 이어폰 특가 세트",
		"무선 이어폰 고급형",
		"블루투스 스피커 단품",
	}

	keywords := extractKeywords(names)

	assert.Contains(t, keywords, "무선")
	assert.Contains(t, keywords, "이어폰")
	assert.NotContains(t, keywords, "특가")
	assert.NotContains(t, keywords, "세트")
	assert.NotContains(t, keywords, "블루투스")
}

func TestPreferences_ToPromptContext_NoDataReturnsFixedMessage(t *testing.T) {
	assert.Equal(t, "사용자 구매/평가 이력이 없습니다.", Preferences{}.ToPromptContext())
}

func TestPreferences_ToPromptContext_RendersOnlyPopulatedLines(t *testing.T) {
	prefs := Preferences{
		DataPoints:           3,
		AveragePurchasePrice: 45_000,
		PriceSensitivity:     "medium",
		PurchaseFrequency:    "high",
		AnalyzedAt:           time.Now(),
	}

	ctx := prefs.ToPromptContext()

	assert.Contains(t, ctx, "평균 구매 가격: 45,000원")
	assert.Contains(t, ctx, "가격 민감도: 보통")
	assert.Contains(t, ctx, "구매 빈도: 자주 구매")
	assert.NotContains(t, ctx, "선호 카테고리")
	assert.NotContains(t, ctx, "평균 평점")
}
