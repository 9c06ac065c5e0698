package agents

import (
	"fmt"

	"github.com/KHY90/cartpilot-backend/internal/domain"
	"github.com/KHY90/cartpilot-backend/internal/types"
)

// formatPrice renders an amount the way every mode agent's prompt and card
// output does: "45,000원".
func formatPrice(price int64) string {
	return types.Won(price).Display()
}

// dedupeByProductID preserves first-seen order, mirroring the source's
// seen_ids set.
func dedupeByProductID(products []domain.ProductCandidate) []domain.ProductCandidate {
	seen := make(map[string]struct{}, len(products))
	out := make([]domain.ProductCandidate, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ProductID]; ok {
			continue
		}
		seen[p.ProductID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func newCard(p domain.ProductCandidate, reason string, warnings []string) domain.RecommendationCard {
	if warnings == nil {
		warnings = []string{}
	}
	return domain.RecommendationCard{
		ProductID:            p.ProductID,
		Title:                p.Title,
		Image:                p.Image,
		Price:                p.Price,
		PriceDisplay:         formatPrice(p.Price),
		MallName:             p.MallName,
		Link:                 p.Link,
		RecommendationReason: reason,
		Warnings:             warnings,
	}
}

func buildProductList(products []domain.ProductCandidate, limit int) string {
	out := ""
	for i, p := range products {
		if i >= limit {
			break
		}
		brandInfo := ""
		if p.Brand != "" {
			brandInfo = fmt.Sprintf(" [%s]", p.Brand)
		}
		out += fmt.Sprintf("%d. [%s] %s%s - %s (%s)\n", i+1, p.ProductID, p.Title, brandInfo, formatPrice(p.Price), p.MallName)
	}
	return out
}

// Input is the common set of arguments every mode agent consumes from the
// orchestrator state: the session's accumulated requirements, the
// analyzer's search keyword suggestions, and identifiers used to build the
// cache key.
type Input struct {
	SessionID      string
	RawQuery       string
	Requirements   domain.Requirements
	SearchKeywords []string

	// PreferenceContext is the preference analyzer's prompt-ready profile
	// string for the requesting user, empty when the turn carries no valid
	// bearer or the analyzer found no data. See §4.10.
	PreferenceContext string
}

// withPreferenceContext appends the user's preference profile to prompt as
// a labeled block the model can weigh alongside the catalog results, the
// generalized form of each mode agent's recipient/budget info blocks.
func withPreferenceContext(prompt, preferenceContext string) string {
	if preferenceContext == "" {
		return prompt
	}
	return prompt + "\n사용자 구매 성향:\n" + preferenceContext + "\n"
}

func budgetPriceRange(requirements domain.Requirements) (min, max *int64) {
	if requirements.Budget == nil {
		return nil, nil
	}
	return requirements.Budget.MinPrice, requirements.Budget.MaxPrice
}
