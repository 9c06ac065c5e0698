package textparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBudget_SingleAmount(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		wantTotal int64
	}{
		{"5만원", "선물 추천해줘 5만원", 50_000},
		{"100만원", "노트북+마우스+키보드 100만원에 맞춰줘", 1_000_000},
		{"bare small number assumed man-won", "30 정도", 300_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ExtractBudget(tc.text)
			require.NotNil(t, b)
			require.NotNil(t, b.TotalBudget)
			assert.Equal(t, tc.wantTotal, *b.TotalBudget)
			assert.Equal(t, int64(float64(tc.wantTotal)*0.8), *b.MinPrice)
			assert.Equal(t, int64(float64(tc.wantTotal)*1.2), *b.MaxPrice)
		})
	}
}

func TestExtractBudget_Flexible(t *testing.T) {
	b := ExtractBudget("대략 5만원 정도")
	require.NotNil(t, b)
	assert.True(t, b.IsFlexible)
}

func TestExtractBudget_NoSignal(t *testing.T) {
	assert.Nil(t, ExtractBudget("가성비 무선 키보드 추천"))
}

func TestExtractItems(t *testing.T) {
	items := ExtractItems("노트북+마우스+키보드 100만원에 맞춰줘")
	assert.Contains(t, items, "노트북")
	assert.Contains(t, items, "마우스")
	assert.Contains(t, items, "키보드")
	for _, it := range items {
		assert.NotContains(t, it, "원")
	}
}

func TestExtractItems_SplitSegments(t *testing.T) {
	items := ExtractItems("캠핑의자+캠핑테이블, 5만원 예산")
	assert.Contains(t, items, "캠핑의자")
	assert.Contains(t, items, "캠핑테이블")
	assert.NotContains(t, items, "5만원 예산")
}

func TestExtractRecipient_FullContext(t *testing.T) {
	r := ExtractRecipient("30대 남자 동료 퇴사 선물 5만원")
	require.NotNil(t, r)
	require.NotNil(t, r.Relation)
	assert.Equal(t, "colleague", *r.Relation)
	require.NotNil(t, r.Gender)
	assert.Equal(t, "male", *r.Gender)
	require.NotNil(t, r.AgeGroup)
	assert.Equal(t, "30대", *r.AgeGroup)
	require.NotNil(t, r.Occasion)
	assert.Equal(t, "farewell", *r.Occasion)
}

func TestExtractRecipient_NoSignal(t *testing.T) {
	assert.Nil(t, ExtractRecipient("가성비 무선 키보드 추천"))
}

func TestParseUserInput_Idempotent(t *testing.T) {
	text := "30대 남자 동료 퇴사 선물 5만원"
	b1, items1, r1 := ParseUserInput(text)
	b2, items2, r2 := ParseUserInput(text)
	assert.Equal(t, b1, b2)
	assert.Equal(t, items1, items2)
	assert.Equal(t, r1, r2)
}

func TestSeasonKeywords_NonEmpty(t *testing.T) {
	for _, season := range []string{"spring", "summer", "fall", "winter"} {
		assert.NotEmpty(t, SeasonKeywords(season), season)
	}
}
