// Package agents implements the single-call analyzer and the five
// intent-specific mode agents that the orchestrator dispatches to.
package agents

import (
	"context"
	"strings"

	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/domain"
)

const analysisPrompt = `당신은 쇼핑 요청을 분석하는 AI입니다.
사용자의 전체 대화 내용을 분석하여 의도와 요구사항을 추출하세요.

## 의도 분류 (5가지 중 하나 선택)

1. **GIFT** - 선물 추천
   - 키워드: "선물", "줄", "드릴", 받는 사람 정보, 기념일/이벤트
   - 예: "30대 남자 동료 퇴사 선물 5만원"

2. **VALUE** - 가성비 제품 비교
   - 키워드: "가성비", "추천", "좋은", 특정 품목
   - 예: "가성비 무선 키보드 추천"

3. **BUNDLE** - 묶음 구매 최적화
   - 키워드: 여러 품목, 총 예산, "맞춰줘", "세트"
   - 예: "노트북+마우스+키보드 100만원"

4. **REVIEW** - 리뷰 기반 검증
   - 키워드: "사도 돼?", "괜찮아?", "단점", "후기"
   - 예: "에어프라이어 사도 돼?"

5. **TREND** - 트렌드 추천
   - 키워드: "요즘", "인기", "핫한", "뭐 사?"
   - 예: "요즘 인기 있는 가전?"

## 요구사항 추출

대화 내용에서 다음 정보를 추출하세요:

- **budget**: 예산 정보 (min_price, max_price, total_budget)
- **items**: 찾는 품목/카테고리 리스트 (구체적 품목으로 확장)
  - "방한용품" → ["목도리", "장갑", "머플러", "핫팩"]
  - "전자기기" → ["노트북", "태블릿", "이어폰"]
- **recipient**: 선물 대상 정보 (GIFT 모드일 때)
  - relation: 관계 (friend, colleague, parent, etc.)
  - gender: 성별 (male, female)
  - age_group: 연령대 (20대, 30대 등)
  - occasion: 상황 (birthday, farewell, wedding 등)

## 응답 형식 (JSON만 출력)

` + "```json" + `
{
  "intent": "GIFT|VALUE|BUNDLE|REVIEW|TREND",
  "confidence": 0.0~1.0,
  "budget": {
    "min_price": 숫자 또는 null,
    "max_price": 숫자 또는 null,
    "total_budget": 숫자 또는 null,
    "is_flexible": true/false
  },
  "items": ["품목1", "품목2"],
  "recipient": {
    "relation": "관계 또는 null",
    "gender": "male/female 또는 null",
    "age_group": "연령대 또는 null",
    "occasion": "상황 또는 null"
  },
  "search_keywords": ["네이버 쇼핑 검색에 사용할 키워드들"],
  "reasoning": "분석 근거"
}
` + "```" + `

중요:
- items는 사용자가 언급한 것뿐 아니라 맥락에서 유추 가능한 구체적 품목도 포함
- search_keywords는 실제 쇼핑몰 검색에 적합한 키워드 (예: "30대 남성 퇴사 선물 목도리")
- 정보가 없으면 null로 표시
`

// AnalysisResult is the analyzer's output: the classified intent plus the
// extracted requirements and clarification decision, handed to the
// orchestrator's conditional edge.
type AnalysisResult struct {
	Intent                domain.IntentType
	Confidence            float64
	Requirements          domain.Requirements
	SearchKeywords        []string
	ClarificationNeeded   bool
	ClarificationQuestion string
	ClarificationField    string
	Reasoning             string
}

type rawAnalysis struct {
	Intent     string   `json:"intent"`
	Confidence *float64 `json:"confidence"`
	Budget     *struct {
		MinPrice    *int64 `json:"min_price"`
		MaxPrice    *int64 `json:"max_price"`
		TotalBudget *int64 `json:"total_budget"`
		IsFlexible  *bool  `json:"is_flexible"`
	} `json:"budget"`
	Items     []string `json:"items"`
	Recipient *struct {
		Relation *string `json:"relation"`
		Gender   *string `json:"gender"`
		AgeGroup *string `json:"age_group"`
		Occasion *string `json:"occasion"`
	} `json:"recipient"`
	SearchKeywords []string `json:"search_keywords"`
	Reasoning      string   `json:"reasoning"`
}

// Analyzer runs the single combined intent-classification +
// requirement-extraction LLM call.
type Analyzer struct {
	provider ai.LLMProvider
}

func NewAnalyzer(provider ai.LLMProvider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Analyze concatenates every accumulated user message space-separated,
// issues one generative call, and post-processes the reply into an
// AnalysisResult. priorClarifyCount is the session's clarify_count carried
// over from the previous turn, so the `clarify_count < 2` clarification gate
// (§8 invariant 2) is checked against the conversation's running total
// rather than a count that resets to 0 every turn. Any failure along the
// way — provider error, invalid JSON, whatever — is swallowed into the same
// fallback the source uses: intent VALUE at confidence 0.3, asking for
// `items`.
func (a *Analyzer) Analyze(ctx context.Context, messages []domain.Message, rawQuery string, priorClarifyCount int) AnalysisResult {
	fullContext := joinUserTexts(messages)
	if fullContext == "" {
		fullContext = rawQuery
	}

	result, err := a.analyze(ctx, fullContext, priorClarifyCount)
	if err != nil {
		return fallbackResult(priorClarifyCount)
	}
	return result
}

func (a *Analyzer) analyze(ctx context.Context, fullContext string, priorClarifyCount int) (AnalysisResult, error) {
	reply, err := a.provider.Generate(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: analysisPrompt},
		{Role: domain.RoleUser, Content: "사용자 대화 내용:\n" + fullContext},
	}, ai.GenerateOptions{Temperature: 0.1, JSONMode: true})
	if err != nil {
		return AnalysisResult{}, err
	}

	cleaned, ok := ai.CleanJSONReply(reply)

	var parsed rawAnalysis
	if !ok || decodeJSON(cleaned, &parsed) != nil {
		return AnalysisResult{}, errModelResponseInvalid
	}

	return buildResult(parsed, priorClarifyCount), nil
}

func buildResult(r rawAnalysis, priorClarifyCount int) AnalysisResult {
	intent, ok := domain.KnownIntent(r.Intent)
	confidence := 0.5
	if r.Confidence != nil {
		confidence = *r.Confidence
	}
	if !ok {
		intent = domain.IntentValue
		confidence = 0.5
	}

	var budget *domain.BudgetRange
	if r.Budget != nil && (r.Budget.MinPrice != nil || r.Budget.MaxPrice != nil || r.Budget.TotalBudget != nil) {
		isFlexible := true
		if r.Budget.IsFlexible != nil {
			isFlexible = *r.Budget.IsFlexible
		}
		budget = &domain.BudgetRange{
			MinPrice:    r.Budget.MinPrice,
			MaxPrice:    r.Budget.MaxPrice,
			TotalBudget: r.Budget.TotalBudget,
			IsFlexible:  isFlexible,
		}
	}

	var recipient *domain.RecipientInfo
	if r.Recipient != nil {
		candidate := &domain.RecipientInfo{
			Relation: r.Recipient.Relation,
			Gender:   r.Recipient.Gender,
			AgeGroup: r.Recipient.AgeGroup,
			Occasion: r.Recipient.Occasion,
		}
		if candidate.HasAny() {
			recipient = candidate
		}
	}

	searchKeywords := r.SearchKeywords
	if len(searchKeywords) == 0 {
		searchKeywords = r.Items
	}

	requirements := domain.Requirements{
		Budget:       budget,
		Items:        r.Items,
		Recipient:    recipient,
		Constraints:  domain.DefaultConstraints(),
		ClarifyCount: priorClarifyCount,
	}
	requirements.MissingFields = MissingFields(requirements, intent)

	clarificationNeeded := len(requirements.MissingFields) > 0 && requirements.ClarifyCount < 2
	var field, question string
	if clarificationNeeded {
		field, question = ClarificationQuestion(requirements.MissingFields[0], intent)
		requirements.ClarifyCount++
	}

	return AnalysisResult{
		Intent:                intent,
		Confidence:            confidence,
		Requirements:          requirements,
		SearchKeywords:        searchKeywords,
		ClarificationNeeded:   clarificationNeeded,
		ClarificationQuestion: question,
		ClarificationField:    field,
		Reasoning:             r.Reasoning,
	}
}

// fallbackResult mirrors the source's except-branch: clarification is
// forced on `items` regardless of the counter, matching DESIGN.md's Open
// Question #1 decision. priorClarifyCount is still carried through
// unincremented, so a run of provider failures doesn't silently burn the
// user's two clarification attempts.
func fallbackResult(priorClarifyCount int) AnalysisResult {
	return AnalysisResult{
		Intent:     domain.IntentValue,
		Confidence: 0.3,
		Requirements: domain.Requirements{
			Constraints:  domain.DefaultConstraints(),
			ClarifyCount: priorClarifyCount,
		},
		ClarificationNeeded:   true,
		ClarificationQuestion: "어떤 제품을 찾으시나요?",
		ClarificationField:    "items",
	}
}

func joinUserTexts(messages []domain.Message) string {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role != domain.RoleUser {
			continue
		}
		texts = append(texts, m.Content)
	}
	return strings.Join(texts, " ")
}
