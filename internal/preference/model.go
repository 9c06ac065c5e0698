// Package preference derives a user's shopping profile from their purchase,
// rating, and wishlist history — a read-only view computed on demand, never
// persisted, that mode agents can fold into their prompts as context.
package preference

import (
	"fmt"
	"strings"
	"time"

	"github.com/KHY90/cartpilot-backend/internal/types"
)

var krSensitivity = map[string]string{
	"low":    "낮음 (가격보다 품질 중시)",
	"medium": "보통",
	"high":   "높음 (가성비 중시)",
}

var krFrequency = map[string]string{
	"low":    "가끔 구매",
	"medium": "보통",
	"high":   "자주 구매",
}

// CategoryWeight is a preferred category paired with its share of the
// window's categorised purchases (weights across all categories sum to 1).
type CategoryWeight struct {
	Category string
	Weight   float64
}

// Preferences is the derived profile. Zero value (DataPoints == 0) means
// "no signal" — HasData reports that explicitly.
type Preferences struct {
	AveragePurchasePrice float64
	PriceRangeMin        int64
	PriceRangeMax        int64
	PriceSensitivity     string // low | medium | high
	PreferredCategories  []CategoryWeight
	AverageRating        float64
	HighRatedKeywords    []string
	PurchaseFrequency    string // low | medium | high
	PreferredMalls       []string
	RecentPurchases      []string
	DataPoints           int
	AnalyzedAt           time.Time
}

// HasData reports whether any purchase, rating, or wishlist signal
// contributed to this profile.
func (p Preferences) HasData() bool {
	return p.DataPoints > 0
}

// ToPromptContext renders the profile as the multi-line Korean block mode
// agents splice into their prompts. Missing components are omitted rather
// than rendered as empty lines.
func (p Preferences) ToPromptContext() string {
	if p.DataPoints == 0 {
		return "사용자 구매/평가 이력이 없습니다."
	}

	var lines []string

	if p.AveragePurchasePrice > 0 {
		lines = append(lines, "평균 구매 가격: "+types.Won(int64(p.AveragePurchasePrice)).Display())
		if p.PriceRangeMax > 0 {
			lines = append(lines, "선호 가격대: "+types.Won(p.PriceRangeMin).Display()+" ~ "+types.Won(p.PriceRangeMax).Display())
		}
		if s, ok := krSensitivity[p.PriceSensitivity]; ok {
			lines = append(lines, "가격 민감도: "+s)
		}
	}

	if len(p.PreferredCategories) > 0 {
		names := make([]string, 0, 5)
		for i, c := range p.PreferredCategories {
			if i >= 5 {
				break
			}
			names = append(names, c.Category)
		}
		lines = append(lines, "선호 카테고리: "+strings.Join(names, ", "))
	}

	if p.AverageRating > 0 {
		lines = append(lines, fmt.Sprintf("평균 평점: %.1f", p.AverageRating))
	}
	if len(p.HighRatedKeywords) > 0 {
		kws := p.HighRatedKeywords
		if len(kws) > 5 {
			kws = kws[:5]
		}
		lines = append(lines, "고평점 키워드: "+strings.Join(kws, ", "))
	}

	if s, ok := krFrequency[p.PurchaseFrequency]; ok {
		lines = append(lines, "구매 빈도: "+s)
	}

	if len(p.PreferredMalls) > 0 {
		malls := p.PreferredMalls
		if len(malls) > 3 {
			malls = malls[:3]
		}
		lines = append(lines, "자주 이용하는 쇼핑몰: "+strings.Join(malls, ", "))
	}

	return strings.Join(lines, "\n")
}
