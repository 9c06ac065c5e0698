package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/cache"
	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

const valueRecommendationPrompt = `당신은 가성비 분석 전문가입니다.
주어진 상품 목록을 분석하여 가격대별로 분류하고 추천 이유를 작성하세요.

상품 카테고리: %s
검색 키워드: %s

상품 목록:
%s

다음 형식으로 가격대별 추천을 작성하세요 (JSON만 출력):
{
  "budget_tier": [
    {
      "product_id": "상품 ID",
      "recommendation_reason": "이 가격대에서 이 상품을 추천하는 이유 (2-3문장)",
      "tier_benefits": "이 가격대에서 얻는 것",
      "tier_tradeoffs": "이 가격대에서 포기하는 것",
      "warnings": ["주의사항 (있으면)"]
    }
  ],
  "standard_tier": [...],
  "premium_tier": [...]
}

분류 기준:
1. budget_tier (저가): 가격 하위 33%% - 가성비 최우선, 기본 기능 충실
2. standard_tier (표준): 가격 중위 34-66%% - 가격 대비 성능 균형
3. premium_tier (프리미엄): 가격 상위 67%% 이상 - 최고 품질/기능

각 티어별로 1-2개 상품을 추천하세요. 총 3-6개 상품.

선택 기준:
1. 해당 가격대에서 가장 가성비가 좋은 상품
2. 리뷰/평점이 좋은 상품 우선
3. 유명 브랜드 vs 가성비 브랜드 균형
4. 실용성과 내구성 고려
`

// ValueAgent implements the gassongbi (cost-effectiveness) mode: it tiers
// search results by price and asks the model to pick 1-2 standout products
// per tier.
type ValueAgent struct {
	catalog  Searcher
	provider ai.LLMProvider
	cache    Cache
}

func NewValueAgent(catalog Searcher, provider ai.LLMProvider, cache Cache) *ValueAgent {
	return &ValueAgent{catalog: catalog, provider: provider, cache: cache}
}

type ValueResult struct {
	Recommendation domain.ValueRecommendation
	Cached         bool
}

func (a *ValueAgent) Run(ctx context.Context, in Input) (ValueResult, error) {
	key := cache.RecommendationKey(string(domain.IntentValue), in.SessionID, map[string]any{"query": in.RawQuery})
	if v, ok := a.cache.Get(key); ok {
		if rec, ok := v.(domain.ValueRecommendation); ok {
			return ValueResult{Recommendation: rec, Cached: true}, nil
		}
	}

	keywords := in.SearchKeywords
	if len(keywords) == 0 {
		keywords = generateValueSearchQueries(in.Requirements)
	}
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}

	minPrice, maxPrice := budgetPriceRange(in.Requirements)
	var params []catalog.SearchParams
	for _, kw := range keywords {
		for _, sortMode := range []string{"sim", "asc"} {
			params = append(params, catalog.SearchParams{
				Query: kw, Display: 15, Sort: sortMode,
				MinPrice: minPrice, MaxPrice: maxPrice,
				ExcludeUsed: true, ExcludeRental: true,
			})
		}
	}

	all := fanOutSearch(ctx, a.catalog, params, 6)
	if len(all) == 0 {
		return ValueResult{}, apperr.New(apperr.KindUpstreamUnavailable, "검색 결과가 없습니다. 다른 키워드로 시도해 주세요.")
	}
	products := dedupeByProductID(all)

	tiered := classifyByPriceTier(products)
	category := extractValueCategory(in.Requirements, keywords)

	prompt := fmt.Sprintf(valueRecommendationPrompt, category, strings.Join(keywords, ", "), buildProductList(products, 30))
	prompt = withPreferenceContext(prompt, in.PreferenceContext)
	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "당신은 가성비 분석 전문가입니다. 정확한 JSON 형식으로만 응답하세요."},
		{Role: domain.RoleUser, Content: prompt},
	}, ai.GenerateOptions{Temperature: 0.5, JSONMode: true})
	if err != nil {
		return ValueResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)
	var llmResult valueLLMResult
	if !ok || decodeJSON(cleaned, &llmResult) != nil {
		return ValueResult{}, errModelResponseInvalid
	}

	productMap := make(map[string]domain.ProductCandidate, len(products))
	for _, p := range products {
		productMap[p.ProductID] = p
	}

	budgetCards := buildValueTierCards(llmResult.BudgetTier, "budget", productMap)
	standardCards := buildValueTierCards(llmResult.StandardTier, "standard", productMap)
	premiumCards := buildValueTierCards(llmResult.PremiumTier, "premium", productMap)

	budgetCards = fillTierCards(budgetCards, tiered.budget, "budget", 1)
	standardCards = fillTierCards(standardCards, tiered.standard, "standard", 1)
	premiumCards = fillTierCards(premiumCards, tiered.premium, "premium", 1)

	rec := domain.ValueRecommendation{
		BudgetTier:   budgetCards,
		StandardTier: standardCards,
		PremiumTier:  premiumCards,
		Category:     category,
	}

	a.cache.Set(key, rec, 0)
	return ValueResult{Recommendation: rec, Cached: false}, nil
}

type valueTierEntry struct {
	ProductID            string   `json:"product_id"`
	RecommendationReason string   `json:"recommendation_reason"`
	TierBenefits         string   `json:"tier_benefits"`
	TierTradeoffs        string   `json:"tier_tradeoffs"`
	Warnings             []string `json:"warnings"`
}

type valueLLMResult struct {
	BudgetTier   []valueTierEntry `json:"budget_tier"`
	StandardTier []valueTierEntry `json:"standard_tier"`
	PremiumTier  []valueTierEntry `json:"premium_tier"`
}

func buildValueTierCards(entries []valueTierEntry, tier string, productMap map[string]domain.ProductCandidate) []domain.RecommendationCard {
	var cards []domain.RecommendationCard
	for i, e := range entries {
		if i >= 2 {
			break
		}
		p, ok := productMap[e.ProductID]
		if !ok {
			continue
		}
		reason := e.RecommendationReason
		if reason == "" {
			reason = "가성비가 좋은 상품입니다."
		}
		card := newCard(p, reason, e.Warnings)
		card.Tier = tier
		card.TierBenefits = e.TierBenefits
		card.TierTradeoffs = e.TierTradeoffs
		cards = append(cards, card)
	}
	return cards
}

// fillTierCards tops a tier up to minCount using the tier's raw product
// list when the model didn't propose enough (or any) cards.
func fillTierCards(cards []domain.RecommendationCard, tierProducts []domain.ProductCandidate, tier string, minCount int) []domain.RecommendationCard {
	existing := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		existing[c.ProductID] = struct{}{}
	}
	for _, p := range tierProducts {
		if len(cards) >= minCount {
			break
		}
		if _, ok := existing[p.ProductID]; ok {
			continue
		}
		card := newCard(p, fmt.Sprintf("%s 가격대의 인기 상품입니다.", tier), nil)
		card.Tier = tier
		cards = append(cards, card)
	}
	return cards
}

type priceTiers struct {
	budget, standard, premium []domain.ProductCandidate
}

func classifyByPriceTier(products []domain.ProductCandidate) priceTiers {
	if len(products) == 0 {
		return priceTiers{}
	}
	sorted := append([]domain.ProductCandidate(nil), products...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	total := len(sorted)
	budgetEnd := total / 3
	standardEnd := (total * 2) / 3

	t := priceTiers{}
	if budgetEnd > 0 {
		t.budget = sorted[:budgetEnd]
	} else {
		t.budget = sorted[:1]
	}
	if standardEnd > budgetEnd {
		t.standard = sorted[budgetEnd:standardEnd]
	} else {
		end := budgetEnd + 1
		if end > total {
			end = total
		}
		t.standard = sorted[budgetEnd:end]
	}
	if standardEnd < total {
		t.premium = sorted[standardEnd:]
	} else {
		t.premium = sorted[total-1:]
	}
	return t
}

func extractValueCategory(requirements domain.Requirements, searchKeywords []string) string {
	if len(requirements.Items) > 0 {
		return requirements.Items[0]
	}
	if len(searchKeywords) > 0 {
		c := strings.ReplaceAll(searchKeywords[0], "가성비", "")
		c = strings.ReplaceAll(c, "추천", "")
		return strings.TrimSpace(c)
	}
	return "상품"
}

func generateValueSearchQueries(requirements domain.Requirements) []string {
	var queries []string
	items := requirements.Items
	if len(items) > 3 {
		items = items[:3]
	}
	for _, item := range items {
		queries = append(queries, item+" 추천", "가성비 "+item)
	}
	if len(queries) == 0 {
		queries = []string{"가성비 추천", "인기상품"}
	}
	if len(queries) > 5 {
		queries = queries[:5]
	}
	return queries
}
