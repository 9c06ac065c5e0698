// Package domain holds the shared value types that flow between the text
// parser, analyzer, orchestrator, mode agents, and catalog gateway — the
// "tagged record with optional fields" the design notes call for in place of
// a dynamically-typed state bag.
package domain

import "time"

type IntentType string

const (
	IntentGift   IntentType = "GIFT"
	IntentValue  IntentType = "VALUE"
	IntentBundle IntentType = "BUNDLE"
	IntentReview IntentType = "REVIEW"
	IntentTrend  IntentType = "TREND"
)

// KnownIntent reports whether s names one of the five intents.
func KnownIntent(s string) (IntentType, bool) {
	switch IntentType(s) {
	case IntentGift, IntentValue, IntentBundle, IntentReview, IntentTrend:
		return IntentType(s), true
	}
	return "", false
}

type BudgetRange struct {
	MinPrice    *int64 `json:"min_price,omitempty"`
	MaxPrice    *int64 `json:"max_price,omitempty"`
	TotalBudget *int64 `json:"total_budget,omitempty"`
	IsFlexible  bool   `json:"is_flexible"`
}

type RecipientInfo struct {
	Relation *string `json:"relation,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	AgeGroup *string `json:"age_group,omitempty"`
	Occasion *string `json:"occasion,omitempty"`
}

// HasAny reports whether any field of the recipient is set — the source's
// rule for returning nil vs. a populated struct.
func (r *RecipientInfo) HasAny() bool {
	if r == nil {
		return false
	}
	return r.Relation != nil || r.Gender != nil || r.AgeGroup != nil || r.Occasion != nil
}

type Constraints struct {
	ExcludeUsed      bool     `json:"exclude_used"`
	ExcludeRental    bool     `json:"exclude_rental"`
	ExcludeOverseas  bool     `json:"exclude_overseas"`
	BrandBlacklist   []string `json:"brand_blacklist,omitempty"`
	DeliveryDeadline *string  `json:"delivery_deadline,omitempty"`
}

// DefaultConstraints mirrors the analyzer's fixed exclusion defaults.
func DefaultConstraints() Constraints {
	return Constraints{ExcludeUsed: true, ExcludeRental: true, ExcludeOverseas: true}
}

type Requirements struct {
	Budget        *BudgetRange   `json:"budget,omitempty"`
	Items         []string       `json:"items,omitempty"`
	Recipient     *RecipientInfo `json:"recipient,omitempty"`
	Constraints   Constraints    `json:"constraints"`
	MissingFields []string       `json:"missing_fields,omitempty"`
	ClarifyCount  int            `json:"clarify_count"`
}

type ProductCandidate struct {
	ProductID  string    `json:"product_id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Image      string    `json:"image,omitempty"`
	Price      int64     `json:"price"`
	HighPrice  *int64    `json:"high_price,omitempty"`
	MallName   string    `json:"mall_name"`
	Brand      string    `json:"brand,omitempty"`
	Maker      string    `json:"maker,omitempty"`
	Category1  string    `json:"category1,omitempty"`
	Category2  string    `json:"category2,omitempty"`
	Category3  string    `json:"category3,omitempty"`
	Category4  string    `json:"category4,omitempty"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
