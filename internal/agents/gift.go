package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/apperr"
	"github.com/KHY90/cartpilot-backend/internal/cache"
	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

const giftRecommendationPrompt = `당신은 선물 추천 전문가입니다.
주어진 상품 목록에서 선물로 적합한 상품을 선택하고 추천 이유를 작성하세요.

받는 사람 정보:
%s

예산: %s

상품 목록:
%s

다음 형식으로 3~6개 상품을 추천하세요 (JSON만 출력):
{
  "recommendations": [
    {
      "product_id": "상품 ID",
      "recommendation_reason": "이 상품을 추천하는 2-3문장 이유 (받는 사람 특성과 연결)",
      "warnings": ["주의사항 (있으면)"]
    }
  ],
  "recipient_summary": "받는 분 요약 (예: 30대 남성 동료 (퇴사))",
  "occasion": "상황 (생일, 퇴사 등)"
}

선택 기준:
1. 받는 사람의 특성(나이, 성별, 관계)에 맞는 상품
2. 예산 범위 내 상품 우선
3. 해당 상황(occasion)에 적합한 상품
4. 실용적이면서도 의미 있는 선물
`

var relationKR = map[string]string{
	"friend": "친구", "colleague": "동료", "boss": "상사", "parent": "부모님",
	"mother": "어머니", "father": "아버지", "girlfriend": "여자친구", "boyfriend": "남자친구",
	"wife": "아내", "husband": "남편", "child": "자녀", "son": "아들", "daughter": "딸",
	"teacher": "선생님", "professor": "교수님",
}

var occasionKR = map[string]string{
	"birthday": "생일", "farewell": "퇴사", "welcome": "입사", "promotion": "승진",
	"wedding": "결혼", "anniversary": "기념일", "christmas": "크리스마스",
	"valentine": "발렌타인데이", "whiteday": "화이트데이", "parents_day": "어버이날",
	"teachers_day": "스승의날", "graduation": "졸업", "enrollment": "입학",
}

var occasionSearchKR = map[string]string{
	"birthday": "생일선물", "farewell": "퇴사선물", "welcome": "입사선물",
	"promotion": "승진선물", "wedding": "결혼선물", "anniversary": "기념일선물",
	"christmas": "크리스마스선물", "parents_day": "어버이날선물",
}

var relationSearchKR = map[string]string{
	"colleague": "직장동료선물", "boss": "상사선물", "friend": "친구선물",
	"girlfriend": "여자친구선물", "boyfriend": "남자친구선물", "parent": "부모님선물",
}

// GiftAgent implements the GIFT mode: recipient-aware product search plus an
// LLM pass that writes recommendation reasons tied to the recipient.
type GiftAgent struct {
	catalog  Searcher
	provider ai.LLMProvider
	cache    Cache
}

func NewGiftAgent(catalog Searcher, provider ai.LLMProvider, cache Cache) *GiftAgent {
	return &GiftAgent{catalog: catalog, provider: provider, cache: cache}
}

type GiftResult struct {
	Recommendation domain.GiftRecommendation
	Cached         bool
}

func (a *GiftAgent) Run(ctx context.Context, in Input) (GiftResult, error) {
	key := cache.RecommendationKey(string(domain.IntentGift), in.SessionID, map[string]any{"query": in.RawQuery})
	if v, ok := a.cache.Get(key); ok {
		if rec, ok := v.(domain.GiftRecommendation); ok {
			return GiftResult{Recommendation: rec, Cached: true}, nil
		}
	}

	queries := generateGiftSearchQueries(in.Requirements)
	minPrice, maxPrice := budgetPriceRange(in.Requirements)

	var params []catalog.SearchParams
	for _, q := range queries {
		params = append(params, catalog.SearchParams{
			Query: q, Display: 10, Sort: "sim",
			MinPrice: minPrice, MaxPrice: maxPrice,
			ExcludeUsed: true, ExcludeRental: true,
		})
	}

	all := fanOutSearch(ctx, a.catalog, params, 3)
	if len(all) == 0 {
		return GiftResult{}, apperr.New(apperr.KindUpstreamUnavailable, "검색 결과가 없습니다. 다른 키워드로 시도해 주세요.")
	}
	products := dedupeByProductID(all)

	recipientInfo := buildRecipientInfo(in.Requirements)
	budgetInfo := buildBudgetInfo(in.Requirements)

	prompt := fmt.Sprintf(giftRecommendationPrompt, recipientInfo, budgetInfo, buildProductList(products, 20))
	prompt = withPreferenceContext(prompt, in.PreferenceContext)
	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "당신은 친절한 선물 추천 전문가입니다."},
		{Role: domain.RoleUser, Content: prompt},
	}, ai.GenerateOptions{Temperature: 0.7, JSONMode: true})
	if err != nil {
		return GiftResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)
	var llmResult giftLLMResult
	if !ok || decodeJSON(cleaned, &llmResult) != nil {
		return GiftResult{}, errModelResponseInvalid
	}

	productMap := make(map[string]domain.ProductCandidate, len(products))
	for _, p := range products {
		productMap[p.ProductID] = p
	}

	var cards []domain.RecommendationCard
	for i, rec := range llmResult.Recommendations {
		if i >= 6 {
			break
		}
		p, ok := productMap[rec.ProductID]
		if !ok {
			continue
		}
		reason := rec.RecommendationReason
		if reason == "" {
			reason = "좋은 선물이 될 것 같습니다."
		}
		cards = append(cards, newCard(p, reason, rec.Warnings))
	}

	if len(cards) < 3 {
		existing := make(map[string]struct{}, len(cards))
		for _, c := range cards {
			existing[c.ProductID] = struct{}{}
		}
		for _, p := range products {
			if len(cards) >= 3 {
				break
			}
			if _, ok := existing[p.ProductID]; ok {
				continue
			}
			cards = append(cards, newCard(p, "인기 있는 선물 상품입니다.", nil))
		}
	}
	if len(cards) > 6 {
		cards = cards[:6]
	}

	occasion := llmResult.Occasion
	recipientSummary := llmResult.RecipientSummary
	if recipientSummary == "" {
		recipientSummary = recipientInfo
	}

	rec := domain.GiftRecommendation{
		Cards:            cards,
		RecipientSummary: recipientSummary,
		Occasion:         occasion,
		BudgetRange:      budgetInfo,
	}

	a.cache.Set(key, rec, 0)
	return GiftResult{Recommendation: rec, Cached: false}, nil
}

type giftRecEntry struct {
	ProductID            string   `json:"product_id"`
	RecommendationReason string   `json:"recommendation_reason"`
	Warnings             []string `json:"warnings"`
}

type giftLLMResult struct {
	Recommendations  []giftRecEntry `json:"recommendations"`
	RecipientSummary string         `json:"recipient_summary"`
	Occasion         string         `json:"occasion"`
}

func buildRecipientInfo(requirements domain.Requirements) string {
	if requirements.Recipient == nil {
		return "정보 없음"
	}
	r := requirements.Recipient
	var parts []string
	if r.AgeGroup != nil {
		parts = append(parts, *r.AgeGroup)
	}
	if r.Gender != nil {
		switch *r.Gender {
		case "male":
			parts = append(parts, "남성")
		case "female":
			parts = append(parts, "여성")
		}
	}
	if r.Relation != nil {
		if kr, ok := relationKR[*r.Relation]; ok {
			parts = append(parts, kr)
		} else {
			parts = append(parts, *r.Relation)
		}
	}
	if r.Occasion != nil {
		if kr, ok := occasionKR[*r.Occasion]; ok {
			parts = append(parts, fmt.Sprintf("(%s)", kr))
		} else {
			parts = append(parts, fmt.Sprintf("(%s)", *r.Occasion))
		}
	}
	if len(parts) == 0 {
		return "정보 없음"
	}
	return strings.Join(parts, " ")
}

func buildBudgetInfo(requirements domain.Requirements) string {
	b := requirements.Budget
	if b == nil {
		return "지정되지 않음"
	}
	switch {
	case b.MinPrice != nil && b.MaxPrice != nil:
		return fmt.Sprintf("%s ~ %s", formatPrice(*b.MinPrice), formatPrice(*b.MaxPrice))
	case b.TotalBudget != nil:
		return fmt.Sprintf("약 %s", formatPrice(*b.TotalBudget))
	case b.MaxPrice != nil:
		return fmt.Sprintf("최대 %s", formatPrice(*b.MaxPrice))
	default:
		return "지정되지 않음"
	}
}

func generateGiftSearchQueries(requirements domain.Requirements) []string {
	var queries []string
	if requirements.Recipient != nil {
		r := requirements.Recipient
		if r.Gender != nil && r.AgeGroup != nil {
			genderKR := ""
			switch *r.Gender {
			case "male":
				genderKR = "남자"
			case "female":
				genderKR = "여자"
			}
			queries = append(queries, fmt.Sprintf("%s %s 선물", *r.AgeGroup, genderKR))
		}
		if r.Occasion != nil {
			if kr, ok := occasionSearchKR[*r.Occasion]; ok {
				queries = append(queries, kr)
			} else {
				queries = append(queries, *r.Occasion+"선물")
			}
		}
		if r.Relation != nil {
			if kr, ok := relationSearchKR[*r.Relation]; ok {
				queries = append(queries, kr)
			}
		}
	}
	if len(queries) == 0 {
		queries = []string{"인기선물", "베스트선물", "추천선물"}
	}
	if len(queries) > 5 {
		queries = queries[:5]
	}
	if len(queries) > 3 {
		queries = queries[:3]
	}
	return queries
}
