package agents

import "github.com/KHY90/cartpilot-backend/internal/domain"

// MissingFields reports which required fields intent is missing from
// requirements, per the per-intent rules in §4.7.
func MissingFields(requirements domain.Requirements, intent domain.IntentType) []string {
	var missing []string

	switch intent {
	case domain.IntentGift:
		if requirements.Recipient == nil || requirements.Recipient.Relation == nil {
			missing = append(missing, "recipient")
		}
		if requirements.Budget == nil {
			missing = append(missing, "budget")
		}
		// GIFT can still search without items — it's a gift recommendation.

	case domain.IntentValue:
		if len(requirements.Items) == 0 {
			missing = append(missing, "items")
		}

	case domain.IntentBundle:
		if len(requirements.Items) < 2 {
			missing = append(missing, "items")
		}
		// total_budget or max_price either one satisfies the gate, matching
		// extractBundleBudget's own fallback order.
		if requirements.Budget == nil || (requirements.Budget.TotalBudget == nil && requirements.Budget.MaxPrice == nil) {
			missing = append(missing, "budget")
		}

	case domain.IntentReview:
		if len(requirements.Items) == 0 {
			missing = append(missing, "items")
		}

	case domain.IntentTrend:
		// no required fields
	}

	return missing
}

// ClarificationQuestion returns the (field, question) pair for the first
// missing field, the canned text keyed by (field, intent) per §4.7.
func ClarificationQuestion(field string, intent domain.IntentType) (string, string) {
	switch field {
	case "recipient":
		return "recipient", "선물 받으실 분이 누구인가요? (예: 친구, 동료, 부모님)"
	case "budget":
		return "budget", "예산이 어느 정도인가요? (예: 5만원, 10만원)"
	case "items":
		if intent == domain.IntentBundle {
			return "items", "어떤 품목들을 함께 구매하실 건가요?"
		}
		return "items", "어떤 종류의 제품을 찾으시나요?"
	default:
		return "unknown", "추가 정보가 필요합니다."
	}
}
