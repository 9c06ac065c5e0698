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

const reviewAnalysisPrompt = `당신은 제품 리뷰 분석 전문가입니다.
사용자가 "%s" 구매를 고민하고 있습니다.
이 제품군의 일반적인 장단점과 구매 전 고려사항을 분석해주세요.

검색된 상품 목록 (참고용):
%s

다음 형식으로 분석 결과를 작성하세요 (JSON만 출력):
{
  "product_category": "제품 카테고리명",
  "top_complaints": [
    {
      "rank": 1,
      "issue": "가장 흔한 불만/단점",
      "frequency": "많음/보통/적음",
      "severity": "high/medium/low"
    },
    {
      "rank": 2,
      "issue": "두 번째 불만/단점",
      "frequency": "많음/보통/적음",
      "severity": "high/medium/low"
    },
    {
      "rank": 3,
      "issue": "세 번째 불만/단점",
      "frequency": "많음/보통/적음",
      "severity": "high/medium/low"
    }
  ],
  "not_recommended_conditions": [
    "이런 경우에는 구매 비추천 1",
    "이런 경우에는 구매 비추천 2"
  ],
  "management_tips": [
    "관리/사용 팁 1",
    "관리/사용 팁 2"
  ],
  "overall_sentiment": "positive/mixed/negative",
  "purchase_recommendation": "구매 추천 여부와 이유 (2-3문장)"
}

분석 기준:
1. 해당 제품군의 일반적인 장단점
2. 자주 언급되는 불만 사항
3. 특정 상황에서의 적합성
4. 구매 후 관리 팁
`

const reviewDisclaimer = "이 분석은 일반적인 리뷰 정보를 기반으로 합니다. 개인의 사용 환경에 따라 다를 수 있습니다."

// ReviewAgent implements the REVIEW mode: a single reference search plus an
// LLM pass that writes a general pros/cons analysis for the product category.
type ReviewAgent struct {
	catalog  Searcher
	provider ai.LLMProvider
	cache    Cache
}

func NewReviewAgent(catalog Searcher, provider ai.LLMProvider, cache Cache) *ReviewAgent {
	return &ReviewAgent{catalog: catalog, provider: provider, cache: cache}
}

type ReviewResult struct {
	Analysis domain.ReviewAnalysis
	Cached   bool
}

func (a *ReviewAgent) Run(ctx context.Context, in Input) (ReviewResult, error) {
	key := cache.RecommendationKey(string(domain.IntentReview), in.SessionID, map[string]any{"query": in.RawQuery})
	if v, ok := a.cache.Get(key); ok {
		if analysis, ok := v.(domain.ReviewAnalysis); ok {
			return ReviewResult{Analysis: analysis, Cached: true}, nil
		}
	}

	category := extractReviewCategory(in.Requirements, in.SearchKeywords)
	if category == "" {
		return ReviewResult{}, apperr.New(apperr.KindValidation, "어떤 제품이 궁금하신가요? 예: 에어프라이어 사도 돼?")
	}

	var products []domain.ProductCandidate
	result, err := a.catalog.Search(ctx, catalog.SearchParams{Query: category, Display: 15, Sort: "sim"})
	if err == nil {
		products = result.Items
	}

	productsStr := "검색 결과 없음"
	if len(products) > 0 {
		productsStr = buildReviewProductList(products)
	}

	prompt := fmt.Sprintf(reviewAnalysisPrompt, category, productsStr)
	prompt = withPreferenceContext(prompt, in.PreferenceContext)
	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "당신은 제품 리뷰 분석 전문가입니다. 정확한 JSON 형식으로만 응답하세요."},
		{Role: domain.RoleUser, Content: prompt},
	}, ai.GenerateOptions{Temperature: 0.5, JSONMode: true})
	if err != nil {
		return ReviewResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)
	var llmResult reviewLLMResult
	if !ok || decodeJSON(cleaned, &llmResult) != nil {
		return ReviewResult{}, errModelResponseInvalid
	}

	var topComplaints []domain.ReviewComplaint
	for i, c := range llmResult.TopComplaints {
		if i >= 5 {
			break
		}
		rank := c.Rank
		if rank == 0 {
			rank = len(topComplaints) + 1
		}
		frequency := c.Frequency
		if frequency == "" {
			frequency = "보통"
		}
		severity := c.Severity
		if severity == "" {
			severity = "medium"
		}
		topComplaints = append(topComplaints, domain.ReviewComplaint{
			Rank: rank, Issue: c.Issue, Frequency: frequency, Severity: severity,
		})
	}
	if len(topComplaints) == 0 {
		topComplaints = []domain.ReviewComplaint{
			{Rank: 1, Issue: "구체적인 리뷰 정보가 부족합니다", Frequency: "보통", Severity: "low"},
		}
	}

	productCategory := llmResult.ProductCategory
	if productCategory == "" {
		productCategory = category
	}
	sentiment := llmResult.OverallSentiment
	if sentiment == "" {
		sentiment = "mixed"
	}

	analysis := domain.ReviewAnalysis{
		ProductCategory:          productCategory,
		TopComplaints:            topComplaints,
		NotRecommendedConditions: llmResult.NotRecommendedConditions,
		ManagementTips:           llmResult.ManagementTips,
		OverallSentiment:         sentiment,
		Disclaimer:               reviewDisclaimer,
	}

	a.cache.Set(key, analysis, 0)
	return ReviewResult{Analysis: analysis, Cached: false}, nil
}

type reviewComplaintEntry struct {
	Rank      int    `json:"rank"`
	Issue     string `json:"issue"`
	Frequency string `json:"frequency"`
	Severity  string `json:"severity"`
}

type reviewLLMResult struct {
	ProductCategory          string                  `json:"product_category"`
	TopComplaints            []reviewComplaintEntry  `json:"top_complaints"`
	NotRecommendedConditions []string                `json:"not_recommended_conditions"`
	ManagementTips           []string                `json:"management_tips"`
	OverallSentiment         string                  `json:"overall_sentiment"`
}

func extractReviewCategory(requirements domain.Requirements, searchKeywords []string) string {
	if len(requirements.Items) > 0 {
		return requirements.Items[0]
	}
	if len(searchKeywords) > 0 {
		c := searchKeywords[0]
		c = strings.ReplaceAll(c, "사도 돼", "")
		c = strings.ReplaceAll(c, "괜찮아", "")
		c = strings.ReplaceAll(c, "?", "")
		return strings.TrimSpace(c)
	}
	return ""
}

func buildReviewProductList(products []domain.ProductCandidate) string {
	var lines []string
	for i, p := range products {
		if i >= 15 {
			break
		}
		brand := ""
		if p.Brand != "" {
			brand = fmt.Sprintf(" [%s]", p.Brand)
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s - %s (%s)", i+1, p.Title, brand, formatPrice(p.Price), p.MallName))
	}
	return strings.Join(lines, "\n")
}
