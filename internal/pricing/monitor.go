// Package pricing implements the wishlist price monitor: it re-checks
// every notification-enabled wishlist item against the catalog gateway and
// triggers a price alert when the item hits a new 90-day low or a
// user-set target price.
package pricing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
)

// maxConcurrentChecks bounds the fan-out across wishlist items per §5's
// "configured fan-out ≤ 10 to avoid upstream rate limiting".
const maxConcurrentChecks = 10

// PriceHistoryRetention is how long PriceHistory rows survive before the
// scheduled cleanup job sweeps them.
const PriceHistoryRetention = 180 * 24 * time.Hour

// Searcher is the subset of the catalog gateway this monitor depends on.
type Searcher interface {
	Search(ctx context.Context, p catalog.SearchParams) (catalog.SearchResult, error)
}

// Dispatcher is the subset of the notification dispatcher this monitor
// depends on.
type Dispatcher interface {
	SendPriceAlert(ctx context.Context, u *user.User, item *wishlist.Item, currentPrice, lowestPrice int64) (bool, error)
}

type Users interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Monitor is the §4.11 price monitor service.
type Monitor struct {
	wishlists  *wishlist.Store
	users      Users
	catalog    Searcher
	dispatcher Dispatcher
	log        *logrus.Logger
}

func NewMonitor(wishlists *wishlist.Store, users Users, catalog Searcher, dispatcher Dispatcher, log *logrus.Logger) *Monitor {
	return &Monitor{wishlists: wishlists, users: users, catalog: catalog, dispatcher: dispatcher, log: log}
}

// Summary is checkAll's result shape.
type Summary struct {
	Checked    int
	Updated    int
	AlertsSent int
	Errors     int
}

// CheckAll iterates every notification-enabled wishlist item and re-checks
// its price, bounded to maxConcurrentChecks concurrent lookups. One item's
// failure is accumulated and logged, never aborts the run — mirroring the
// source's per-item try/except that only increments an error counter.
func (m *Monitor) CheckAll(ctx context.Context) (Summary, error) {
	items, err := m.wishlists.ListNotificationEnabled(ctx)
	if err != nil {
		return Summary{}, err
	}

	m.log.WithField("count", len(items)).Info("가격 확인 시작")

	type outcome struct {
		updated    bool
		alertSent  bool
		err        error
		productID  string
	}

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(maxConcurrentChecks)
	for _, item := range items {
		item := item
		p.Go(func() outcome {
			updated, alertSent, err := m.CheckOne(ctx, item)
			return outcome{updated: updated, alertSent: alertSent, err: err, productID: item.ProductID}
		})
	}

	var summary Summary
	var errs error
	for _, o := range p.Wait() {
		summary.Checked++
		if o.err != nil {
			summary.Errors++
			errs = multierr.Append(errs, o.err)
			m.log.WithFields(logrus.Fields{"product_id": o.productID, "error": o.err}).Error("상품 가격 확인 실패")
			continue
		}
		if o.updated {
			summary.Updated++
		}
		if o.alertSent {
			summary.AlertsSent++
		}
	}

	m.log.WithFields(logrus.Fields{
		"checked": summary.Checked, "updated": summary.Updated,
		"alerts_sent": summary.AlertsSent, "errors": summary.Errors,
	}).Info("가격 확인 완료")

	return summary, nil
}

// CheckOne re-checks a single item's price, recording a PriceHistory row
// and dispatching an alert when warranted. Returns (price updated, alert
// sent).
func (m *Monitor) CheckOne(ctx context.Context, item *wishlist.Item) (updated bool, alertSent bool, err error) {
	result, err := m.catalog.Search(ctx, catalog.SearchParams{Query: item.ProductName, Display: 5})
	if err != nil {
		return false, false, err
	}
	if len(result.Items) == 0 {
		return false, false, nil
	}

	currentPrice := result.Items[0].Price
	if currentPrice == item.CurrentPrice {
		return false, false, nil
	}

	lowest, err := m.wishlists.UpdatePrice(ctx, item.ID, currentPrice)
	if err != nil {
		return false, false, err
	}
	updated = true
	item.CurrentPrice = currentPrice
	item.LowestPrice90Days = &lowest

	if !shouldAlert(item, currentPrice, lowest) {
		return updated, false, nil
	}

	owner, err := m.users.GetByID(ctx, item.UserID)
	if err != nil || !owner.Active {
		return updated, false, nil
	}

	sent, err := m.dispatcher.SendPriceAlert(ctx, owner, item, currentPrice, lowest)
	if err != nil {
		m.log.WithFields(logrus.Fields{"item_id": item.ID, "error": err}).Error("알림 발송 실패")
		return updated, false, nil
	}
	return updated, sent, nil
}

// shouldAlert mirrors the source's _should_send_alert: fire when the
// current price matches or beats the 90-day low, or meets a user-set
// target price.
func shouldAlert(item *wishlist.Item, currentPrice, lowest90 int64) bool {
	if currentPrice <= lowest90 {
		return true
	}
	if item.TargetPrice != nil && currentPrice <= *item.TargetPrice {
		return true
	}
	return false
}

// CheckSingle is the manual per-item re-check §6's admin surface exposes.
// It returns the re-checked item and whether a price alert was sent.
func (m *Monitor) CheckSingle(ctx context.Context, itemID string) (*wishlist.Item, bool, error) {
	item, err := m.wishlists.Get(ctx, itemID)
	if err != nil {
		return nil, false, err
	}
	_, alertSent, err := m.CheckOne(ctx, item)
	if err != nil {
		return nil, false, err
	}
	return item, alertSent, nil
}

// CleanupPriceHistory deletes PriceHistory rows past the retention window.
func (m *Monitor) CleanupPriceHistory(ctx context.Context) (int64, error) {
	deleted, err := m.wishlists.DeleteOlderThan(ctx, PriceHistoryRetention)
	if err != nil {
		return 0, err
	}
	m.log.WithField("deleted", deleted).Info("가격 이력 정리 완료")
	return deleted, nil
}
