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

const bundleRecommendationPrompt = `당신은 묶음 구매 최적화 전문가입니다.
사용자가 여러 품목을 총 예산 내에서 구매하려고 합니다.
주어진 상품 목록에서 최적의 조합을 만들어주세요.

품목 목록: %s
총 예산: %s

각 품목별 검색된 상품:
%s

다음 형식으로 2-3개의 조합을 추천하세요 (JSON만 출력):
{
  "combinations": [
    {
      "combination_id": "A",
      "description": "이 조합의 특징 설명",
      "items": [
        {
          "item_category": "품목명",
          "selected_product_id": "선택한 상품 ID",
          "reason": "이 상품을 선택한 이유"
        }
      ],
      "budget_fit": true/false,
      "adjustment_note": "예산 초과 시 조정 방법 (optional)"
    }
  ]
}

조합 기준:
1. 조합 A: 예산 최적화 (가장 저렴하게)
2. 조합 B: 균형 (가성비 중심)
3. 조합 C: 프리미엄 (품질 우선, 예산 약간 초과 가능)

각 조합에서 모든 품목이 포함되어야 합니다.
`

const defaultBundleBudget int64 = 1_000_000

// BundleAgent implements the BUNDLE mode: search each requested item
// category independently, then ask the model to assemble 2-3 budget-fit
// combinations across categories.
type BundleAgent struct {
	catalog  Searcher
	provider ai.LLMProvider
	cache    Cache
}

func NewBundleAgent(catalog Searcher, provider ai.LLMProvider, cache Cache) *BundleAgent {
	return &BundleAgent{catalog: catalog, provider: provider, cache: cache}
}

type BundleResult struct {
	Recommendation domain.BundleRecommendation
	Cached         bool
}

func (a *BundleAgent) Run(ctx context.Context, in Input) (BundleResult, error) {
	key := cache.RecommendationKey(string(domain.IntentBundle), in.SessionID, map[string]any{"query": in.RawQuery})
	if v, ok := a.cache.Get(key); ok {
		if rec, ok := v.(domain.BundleRecommendation); ok {
			return BundleResult{Recommendation: rec, Cached: true}, nil
		}
	}

	items := extractBundleItems(in.Requirements, in.SearchKeywords)
	if len(items) == 0 {
		return BundleResult{}, apperr.New(apperr.KindValidation, "구매할 품목을 알려주세요. 예: 노트북+마우스+키보드 100만원")
	}
	if len(items) > 5 {
		items = items[:5]
	}

	totalBudget := extractBundleBudget(in.Requirements)

	productsByCategory := make(map[string][]domain.ProductCandidate, len(items))
	anyResults := false
	for _, item := range items {
		result, err := a.catalog.Search(ctx, catalog.SearchParams{Query: item, Display: 10, Sort: "sim"})
		if err != nil {
			productsByCategory[item] = nil
			continue
		}
		productsByCategory[item] = result.Items
		if len(result.Items) > 0 {
			anyResults = true
		}
	}
	if !anyResults {
		return BundleResult{}, apperr.New(apperr.KindUpstreamUnavailable, "검색 결과가 없습니다. 다른 품목명으로 시도해 주세요.")
	}

	productsStr := buildBundleProductsByCategory(items, productsByCategory)
	prompt := fmt.Sprintf(bundleRecommendationPrompt, strings.Join(items, ", "), formatPrice(totalBudget), productsStr)
	prompt = withPreferenceContext(prompt, in.PreferenceContext)

	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "당신은 묶음 구매 최적화 전문가입니다. 정확한 JSON 형식으로만 응답하세요."},
		{Role: domain.RoleUser, Content: prompt},
	}, ai.GenerateOptions{Temperature: 0.5, JSONMode: true})
	if err != nil {
		return BundleResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)
	var llmResult bundleLLMResult
	if !ok || decodeJSON(cleaned, &llmResult) != nil {
		return BundleResult{}, errModelResponseInvalid
	}

	allProducts := make(map[string]domain.ProductCandidate)
	for _, products := range productsByCategory {
		for _, p := range products {
			allProducts[p.ProductID] = p
		}
	}

	var combinations []domain.BundleCombination
	for i, combo := range llmResult.Combinations {
		if i >= 3 {
			break
		}
		var bundleItems []domain.BundleItem
		var totalPrice int64

		for _, itemData := range combo.Items {
			product, ok := allProducts[itemData.SelectedProductID]
			if !ok {
				continue
			}
			totalPrice += product.Price

			var alternatives []domain.RecommendationCard
			for _, alt := range productsByCategory[itemData.ItemCategory] {
				if len(alternatives) >= 2 {
					break
				}
				if alt.ProductID == itemData.SelectedProductID {
					continue
				}
				alternatives = append(alternatives, newCard(alt, "", nil))
			}

			bundleItems = append(bundleItems, domain.BundleItem{
				ItemCategory: itemData.ItemCategory,
				Product:      newCard(product, itemData.Reason, nil),
				Alternatives: alternatives,
			})
		}

		if len(bundleItems) == 0 {
			continue
		}
		combinationID := combo.CombinationID
		if combinationID == "" {
			combinationID = "A"
		}
		combinations = append(combinations, domain.BundleCombination{
			CombinationID:  combinationID,
			Items:          bundleItems,
			TotalPrice:     totalPrice,
			TotalDisplay:   formatPrice(totalPrice),
			BudgetFit:      totalPrice <= totalBudget,
			AdjustmentNote: combo.AdjustmentNote,
		})
	}

	if len(combinations) == 0 {
		combinations = defaultBundleCombination(items, productsByCategory, totalBudget)
	}

	rec := domain.BundleRecommendation{
		Combinations: combinations,
		TotalBudget:  totalBudget,
		ItemsCount:   len(items),
	}

	a.cache.Set(key, rec, 0)
	return BundleResult{Recommendation: rec, Cached: false}, nil
}

type bundleItemEntry struct {
	ItemCategory      string `json:"item_category"`
	SelectedProductID string `json:"selected_product_id"`
	Reason            string `json:"reason"`
}

type bundleComboEntry struct {
	CombinationID  string            `json:"combination_id"`
	Items          []bundleItemEntry `json:"items"`
	BudgetFit      bool              `json:"budget_fit"`
	AdjustmentNote string            `json:"adjustment_note"`
}

type bundleLLMResult struct {
	Combinations []bundleComboEntry `json:"combinations"`
}

func extractBundleItems(requirements domain.Requirements, searchKeywords []string) []string {
	if len(requirements.Items) > 0 {
		return requirements.Items
	}
	items := make([]string, 0, len(searchKeywords))
	for _, kw := range searchKeywords {
		kw = strings.ReplaceAll(kw, "추천", "")
		kw = strings.ReplaceAll(kw, "가성비", "")
		kw = strings.TrimSpace(kw)
		if kw != "" {
			items = append(items, kw)
		}
	}
	return items
}

func extractBundleBudget(requirements domain.Requirements) int64 {
	if requirements.Budget != nil {
		if requirements.Budget.TotalBudget != nil {
			return *requirements.Budget.TotalBudget
		}
		if requirements.Budget.MaxPrice != nil {
			return *requirements.Budget.MaxPrice
		}
	}
	return defaultBundleBudget
}

func buildBundleProductsByCategory(items []string, productsByCategory map[string][]domain.ProductCandidate) string {
	out := ""
	for _, category := range items {
		products := productsByCategory[category]
		out += fmt.Sprintf("\n[%s]\n", category)
		for i, p := range products {
			if i >= 10 {
				break
			}
			out += fmt.Sprintf("  %d. [%s] %s - %s\n", i+1, p.ProductID, p.Title, formatPrice(p.Price))
		}
	}
	return out
}

func defaultBundleCombination(items []string, productsByCategory map[string][]domain.ProductCandidate, totalBudget int64) []domain.BundleCombination {
	var bundleItems []domain.BundleItem
	var totalPrice int64
	for _, category := range items {
		products := productsByCategory[category]
		if len(products) == 0 {
			continue
		}
		product := products[0]
		totalPrice += product.Price

		var alternatives []domain.RecommendationCard
		for _, alt := range products[1:min(len(products), 3)] {
			alternatives = append(alternatives, newCard(alt, "", nil))
		}

		bundleItems = append(bundleItems, domain.BundleItem{
			ItemCategory: category,
			Product:      newCard(product, "기본 추천 상품", nil),
			Alternatives: alternatives,
		})
	}
	if len(bundleItems) == 0 {
		return nil
	}
	return []domain.BundleCombination{{
		CombinationID: "A",
		Items:         bundleItems,
		TotalPrice:    totalPrice,
		TotalDisplay:  formatPrice(totalPrice),
		BudgetFit:     totalPrice <= totalBudget,
	}}
}
