// Package wishlist holds a user's tracked products and their price history,
// the data the price monitor re-checks on a schedule.
package wishlist

import "time"

const MaxItemsPerUser = 20

type Item struct {
	ID                  string
	UserID              string
	ProductID           string
	ProductName         string
	Image               string
	Link                string
	MallName            string
	Category            string
	CurrentPrice        int64
	TargetPrice         *int64
	LowestPrice90Days   *int64
	NotificationEnabled bool
	LastNotifiedAt      *time.Time
	Notes               *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PriceHistory is an append-only snapshot of an item's price at a point in
// time. Retained for 180 days; see Store.DeleteOlderThan.
type PriceHistory struct {
	ID         int64
	ItemID     string
	Price      int64
	RecordedAt time.Time
}
