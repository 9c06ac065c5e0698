package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/cache"
	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

const trendAnalysisPrompt = `당신은 쇼핑 트렌드 분석 전문가입니다.
사용자가 요즘 인기 있는 상품을 알고 싶어합니다.

카테고리: %s
현재 날짜: %s

검색된 인기 상품:
%s

다음 형식으로 트렌드 분석을 작성하세요 (JSON만 출력):
{
  "trending_items": [
    {
      "category": "세부 카테고리",
      "keyword": "트렌드 키워드",
      "growth_rate": "+50%%" 또는 "급상승" 등,
      "period": "최근 1개월",
      "target_segment": "주요 구매층 (예: 20-30대 직장인)",
      "why_trending": "인기 이유 설명",
      "recommended_products": ["추천 상품 ID 1", "추천 상품 ID 2"]
    }
  ]
}

분석 기준:
1. 최근 검색량 증가 추세
2. 시즌 트렌드 (계절, 연말 등)
3. 특정 연령대/성별 인기
4. SNS/유튜브 등 바이럴 트렌드

3-5개의 트렌드 아이템을 분석해주세요.
`

var seasonalTrends = map[string][]string{
	"spring": {"미세먼지 마스크", "공기청정기", "봄옷", "러닝화", "골프용품"},
	"summer": {"선풍기", "에어컨", "여행용품", "수영복", "아이스박스"},
	"fall":   {"가을옷", "등산용품", "김장용품", "난방기", "블랭킷"},
	"winter": {"패딩", "난방텐트", "가습기", "전기장판", "크리스마스 선물"},
}

const trendDisclaimer = "트렌드는 빠르게 변할 수 있습니다. 인기 상품 ≠ 최저가입니다."

func currentSeason(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

// TrendAgent implements the TREND mode: combines seasonal keyword search
// with any category the user named, then asks the model to surface the
// trending subset with growth framing.
type TrendAgent struct {
	catalog  Searcher
	provider ai.LLMProvider
	cache    Cache
}

func NewTrendAgent(catalog Searcher, provider ai.LLMProvider, cache Cache) *TrendAgent {
	return &TrendAgent{catalog: catalog, provider: provider, cache: cache}
}

type TrendResult struct {
	Signal domain.TrendSignal
	Cached bool
}

type keywordProducts struct {
	keyword  string
	products []domain.ProductCandidate
}

func (a *TrendAgent) Run(ctx context.Context, in Input) (TrendResult, error) {
	key := cache.RecommendationKey(string(domain.IntentTrend), in.SessionID, map[string]any{"query": in.RawQuery})
	if v, ok := a.cache.Get(key); ok {
		if signal, ok := v.(domain.TrendSignal); ok {
			return TrendResult{Signal: signal, Cached: true}, nil
		}
	}

	category := extractTrendCategory(in.Requirements, in.SearchKeywords)

	now := time.Now()
	season := currentSeason(now)
	trendKeywords := append([]string(nil), seasonalTrends[season]...)
	if len(trendKeywords) > 3 {
		trendKeywords = trendKeywords[:3]
	}
	if category != "전체" {
		tail := trendKeywords
		if len(tail) > 2 {
			tail = tail[:2]
		}
		trendKeywords = append([]string{"인기 " + category, category + " 추천"}, tail...)
	}

	var allProducts []keywordProducts
	for _, keyword := range trendKeywords {
		result, err := a.catalog.Search(ctx, catalog.SearchParams{Query: keyword, Display: 10, Sort: "date"})
		if err != nil {
			continue
		}
		allProducts = append(allProducts, keywordProducts{keyword: keyword, products: result.Items})
	}

	productsStr := buildTrendProductsByKeyword(allProducts)
	if productsStr == "" {
		productsStr = "검색 결과 없음"
	}

	prompt := fmt.Sprintf(trendAnalysisPrompt, category, now.Format("2006-01-02"), productsStr)
	prompt = withPreferenceContext(prompt, in.PreferenceContext)
	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "당신은 쇼핑 트렌드 분석 전문가입니다. 정확한 JSON 형식으로만 응답하세요."},
		{Role: domain.RoleUser, Content: prompt},
	}, ai.GenerateOptions{Temperature: 0.7, JSONMode: true})
	if err != nil {
		return TrendResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)
	var llmResult trendLLMResult
	if !ok || decodeJSON(cleaned, &llmResult) != nil {
		return TrendResult{}, errModelResponseInvalid
	}

	productMap := make(map[string]domain.ProductCandidate)
	for _, kp := range allProducts {
		for _, p := range kp.products {
			productMap[p.ProductID] = p
		}
	}

	var trendingItems []domain.TrendingItem
	for i, item := range llmResult.TrendingItems {
		if i >= 5 {
			break
		}
		reason := item.WhyTrending
		if reason == "" {
			reason = "트렌드 상품"
		}

		var cards []domain.RecommendationCard
		for j, pid := range item.RecommendedProducts {
			if j >= 3 {
				break
			}
			if p, ok := productMap[pid]; ok {
				cards = append(cards, newCard(p, reason, nil))
			}
		}

		if len(cards) == 0 {
			for _, kp := range allProducts {
				if len(kp.products) == 0 {
					continue
				}
				if strings.Contains(strings.ToLower(kp.keyword), strings.ToLower(item.Keyword)) {
					for k, p := range kp.products {
						if k >= 2 {
							break
						}
						cards = append(cards, newCard(p, "트렌드 상품", nil))
					}
					break
				}
			}
		}

		itemCategory := item.Category
		if itemCategory == "" {
			itemCategory = category
		}
		period := item.Period
		if period == "" {
			period = "최근 1개월"
		}

		trendingItems = append(trendingItems, domain.TrendingItem{
			Category:      itemCategory,
			Keyword:       item.Keyword,
			GrowthRate:    item.GrowthRate,
			Period:        period,
			TargetSegment: item.TargetSegment,
			Products:      cards,
		})
	}

	if len(trendingItems) == 0 {
		for i, kp := range allProducts {
			if i >= 3 {
				break
			}
			if len(kp.products) == 0 {
				continue
			}
			var cards []domain.RecommendationCard
			for j, p := range kp.products {
				if j >= 2 {
					break
				}
				cards = append(cards, newCard(p, "인기 상품", nil))
			}
			trendingItems = append(trendingItems, domain.TrendingItem{
				Category:   category,
				Keyword:    kp.keyword,
				GrowthRate: "인기",
				Period:     "최근 1개월",
				Products:   cards,
			})
		}
	}

	signal := domain.TrendSignal{
		TrendingItems: trendingItems,
		DataSource:    "네이버 쇼핑",
		GeneratedAt:   now.Format(time.RFC3339),
		Disclaimer:    trendDisclaimer,
	}

	a.cache.Set(key, signal, 0)
	return TrendResult{Signal: signal, Cached: false}, nil
}

type trendItemEntry struct {
	Category            string   `json:"category"`
	Keyword             string   `json:"keyword"`
	GrowthRate          string   `json:"growth_rate"`
	Period              string   `json:"period"`
	TargetSegment       string   `json:"target_segment"`
	WhyTrending         string   `json:"why_trending"`
	RecommendedProducts []string `json:"recommended_products"`
}

type trendLLMResult struct {
	TrendingItems []trendItemEntry `json:"trending_items"`
}

func extractTrendCategory(requirements domain.Requirements, searchKeywords []string) string {
	if len(requirements.Items) > 0 {
		return requirements.Items[0]
	}
	if len(searchKeywords) > 0 {
		c := searchKeywords[0]
		c = strings.ReplaceAll(c, "요즘", "")
		c = strings.ReplaceAll(c, "인기", "")
		c = strings.ReplaceAll(c, "뭐 사", "")
		c = strings.TrimSpace(c)
		if c != "" {
			return c
		}
	}
	return "전체"
}

func buildTrendProductsByKeyword(allProducts []keywordProducts) string {
	out := ""
	for _, kp := range allProducts {
		out += fmt.Sprintf("\n[%s]\n", kp.keyword)
		for i, p := range kp.products {
			if i >= 5 {
				break
			}
			out += fmt.Sprintf("  %d. [%s] %s - %s\n", i+1, p.ProductID, p.Title, formatPrice(p.Price))
		}
	}
	return out
}
