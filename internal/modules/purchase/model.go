// Package purchase holds a user's logged purchase history, the primary
// input to the preference analyzer's price-sensitivity and category-weight
// calculations.
package purchase

import "time"

type Record struct {
	ID          string
	UserID      string
	ProductName string
	Category    string
	MallName    string
	Price       int64
	Quantity    int
	PurchasedAt time.Time
	Notes       *string
	CreatedAt   time.Time
}

// Stats is the aggregate statistics endpoint's response shape.
type Stats struct {
	TotalPurchases  int              `json:"total_purchases"`
	TotalSpent      int64            `json:"total_spent"`
	AveragePrice    float64          `json:"average_price"`
	Categories      map[string]int64 `json:"categories"`
	MonthlySpending map[string]int64 `json:"monthly_spending"`
}
