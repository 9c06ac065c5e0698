// Package rating holds a user's 1-5 star product ratings, the source the
// preference analyzer mines for high-rated keywords.
package rating

import "time"

type Rating struct {
	ID          string
	UserID      string
	ProductID   string
	ProductName string
	Category    string
	Value       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
