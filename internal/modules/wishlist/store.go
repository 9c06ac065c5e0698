package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
)

var (
	ErrNotFound = errors.New("wishlist item not found")
	ErrDuplicate = errors.New("product already in wishlist")
	ErrFull      = errors.New("wishlist is full")
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts a wishlist item and its first PriceHistory row, enforcing
// the (user_id, product_id) uniqueness and the per-user size cap with
// ErrDuplicate/ErrFull. Both checks are plain SELECTs run before the insert
// transaction, so two concurrent Creates can both pass them; an error from
// the insert itself is returned as it is, not mapped to either sentinel.
func (s *Store) Create(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now

	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, item.UserID).Scan(&count); err != nil {
		return err
	}
	if count >= MaxItemsPerUser {
		return ErrFull
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`, item.UserID, item.ProductID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO wishlist_items (
			id, user_id, product_id, product_name, image, link, mall_name, category,
			current_price, target_price, lowest_price_90days, notification_enabled, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		item.ID, item.UserID, item.ProductID, item.ProductName, item.Image, item.Link, item.MallName, item.Category,
		item.CurrentPrice, item.TargetPrice, item.CurrentPrice, item.NotificationEnabled, item.Notes,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	item.LowestPrice90Days = &item.CurrentPrice

	_, err = tx.Exec(ctx, `INSERT INTO price_history (item_id, price, recorded_at) VALUES ($1,$2,$3)`,
		item.ID, item.CurrentPrice, now)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRow(ctx, selectItemColumns+` FROM wishlist_items WHERE id = $1`, id)
	return scanItem(row)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Item, error) {
	rows, err := s.db.Query(ctx, selectItemColumns+` FROM wishlist_items WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListNotificationEnabled returns every item across all users with alerts
// turned on — the price monitor's checkAll iteration set.
func (s *Store) ListNotificationEnabled(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.Query(ctx, selectItemColumns+` FROM wishlist_items WHERE notification_enabled = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) Update(ctx context.Context, item *Item) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE wishlist_items
		SET target_price = $1, notification_enabled = $2, notes = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5`,
		item.TargetPrice, item.NotificationEnabled, item.Notes, item.ID, item.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePrice appends a PriceHistory row and refreshes current_price and
// lowest_price_90days in one transaction — the write path §4.11 checkOne
// calls when a re-check observes a new price.
func (s *Store) UpdatePrice(ctx context.Context, id string, newPrice int64) (lowest int64, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now()
	if _, err = tx.Exec(ctx, `INSERT INTO price_history (item_id, price, recorded_at) VALUES ($1,$2,$3)`, id, newPrice, now); err != nil {
		return 0, err
	}

	cutoff := now.AddDate(0, 0, -90)
	if err = tx.QueryRow(ctx, `
		SELECT LEAST(MIN(price), $2) FROM price_history WHERE item_id = $1 AND recorded_at >= $3`,
		id, newPrice, cutoff,
	).Scan(&lowest); err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE wishlist_items SET current_price = $1, lowest_price_90days = $2, updated_at = NOW() WHERE id = $3`,
		newPrice, lowest, id,
	); err != nil {
		return 0, err
	}
	return lowest, tx.Commit(ctx)
}

func (s *Store) MarkNotified(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE wishlist_items SET last_notified_at = $1 WHERE id = $2`, at, id)
	return err
}

func (s *Store) Delete(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) PriceHistory(ctx context.Context, itemID string, days int) ([]PriceHistory, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, price, recorded_at FROM price_history
		WHERE item_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC`, itemID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []PriceHistory
	for rows.Next() {
		var h PriceHistory
		if err := rows.Scan(&h.ID, &h.ItemID, &h.Price, &h.RecordedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// DeleteOlderThan is the retention sweep §4.11 schedules daily: it drops
// PriceHistory rows older than the retention window (180 days).
func (s *Store) DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := s.db.Exec(ctx, `DELETE FROM price_history WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const selectItemColumns = `
	SELECT id, user_id, product_id, product_name, image, link, mall_name, category,
	       current_price, target_price, lowest_price_90days, notification_enabled,
	       last_notified_at, notes, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var it Item
	var targetPrice, lowestPrice sql.NullInt64
	var lastNotifiedAt sql.NullTime
	var notes sql.NullString

	err := row.Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.ProductName, &it.Image, &it.Link, &it.MallName, &it.Category,
		&it.CurrentPrice, &targetPrice, &lowestPrice, &it.NotificationEnabled,
		&lastNotifiedAt, &notes, &it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if targetPrice.Valid {
		it.TargetPrice = &targetPrice.Int64
	}
	if lowestPrice.Valid {
		it.LowestPrice90Days = &lowestPrice.Int64
	}
	if lastNotifiedAt.Valid {
		it.LastNotifiedAt = &lastNotifiedAt.Time
	}
	if notes.Valid {
		it.Notes = &notes.String
	}
	return &it, nil
}

// AsAppError maps the store's sentinel errors to the taxonomy the HTTP
// layer understands.
func AsAppError(err error) *apperr.Error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.New(apperr.KindNotFound, "위시리스트 항목을 찾을 수 없습니다.")
	case errors.Is(err, ErrDuplicate):
		return apperr.New(apperr.KindConflict, "이미 위시리스트에 있는 상품입니다.")
	case errors.Is(err, ErrFull):
		return apperr.New(apperr.KindConflict, "위시리스트는 최대 20개까지 등록할 수 있습니다.")
	default:
		return nil
	}
}
