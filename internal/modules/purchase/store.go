package purchase

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("purchase record not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Quantity < 1 {
		r.Quantity = 1
	}
	r.CreatedAt = time.Now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO purchase_records (id, user_id, product_name, category, mall_name, price, quantity, purchased_at, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.UserID, r.ProductName, r.Category, r.MallName, r.Price, r.Quantity, r.PurchasedAt, r.Notes, r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id, userID string) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, product_name, category, mall_name, price, quantity, purchased_at, notes, created_at
		FROM purchase_records WHERE id = $1 AND user_id = $2`, id, userID)
	return scanRecord(row)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, product_name, category, mall_name, price, quantity, purchased_at, notes, created_at
		FROM purchase_records WHERE user_id = $1 ORDER BY purchased_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListRecentByUser returns the n most recent purchases, newest first — used
// by the preference analyzer's "recent purchases" line.
func (s *Store) ListRecentByUser(ctx context.Context, userID string, n int) ([]*Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, product_name, category, mall_name, price, quantity, purchased_at, notes, created_at
		FROM purchase_records WHERE user_id = $1 ORDER BY purchased_at DESC LIMIT $2`, userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Update(ctx context.Context, r *Record) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE purchase_records
		SET product_name = $1, category = $2, mall_name = $3, price = $4, quantity = $5, purchased_at = $6, notes = $7
		WHERE id = $8 AND user_id = $9`,
		r.ProductName, r.Category, r.MallName, r.Price, r.Quantity, r.PurchasedAt, r.Notes, r.ID, r.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM purchase_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WindowAggregate is the raw §4.10-step-1 aggregate over a purchase window:
// count, average/min/max price, and a category->count / mall->count
// breakdown the analyzer turns into weighted top-N lists.
type WindowAggregate struct {
	Count           int
	AveragePrice    float64
	MinPrice        int64
	MaxPrice        int64
	CategoryCounts  map[string]int
	MallCounts      map[string]int
}

func (s *Store) AggregateSince(ctx context.Context, userID string, since time.Time) (WindowAggregate, error) {
	var agg WindowAggregate
	agg.CategoryCounts = make(map[string]int)
	agg.MallCounts = make(map[string]int)

	var avg, min, max sql.NullFloat64
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), AVG(price), MIN(price), MAX(price)
		FROM purchase_records WHERE user_id = $1 AND purchased_at >= $2`, userID, since,
	).Scan(&count, &avg, &min, &max)
	if err != nil {
		return agg, err
	}
	agg.Count = count
	agg.AveragePrice = avg.Float64
	agg.MinPrice = int64(min.Float64)
	agg.MaxPrice = int64(max.Float64)

	catRows, err := s.db.Query(ctx, `
		SELECT category, COUNT(*) FROM purchase_records
		WHERE user_id = $1 AND purchased_at >= $2 AND category IS NOT NULL AND category != ''
		GROUP BY category ORDER BY COUNT(*) DESC LIMIT 10`, userID, since)
	if err != nil {
		return agg, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cat string
		var n int
		if err := catRows.Scan(&cat, &n); err != nil {
			return agg, err
		}
		agg.CategoryCounts[cat] = n
	}
	if err := catRows.Err(); err != nil {
		return agg, err
	}

	mallRows, err := s.db.Query(ctx, `
		SELECT mall_name, COUNT(*) FROM purchase_records
		WHERE user_id = $1 AND purchased_at >= $2 AND mall_name IS NOT NULL AND mall_name != ''
		GROUP BY mall_name ORDER BY COUNT(*) DESC LIMIT 5`, userID, since)
	if err != nil {
		return agg, err
	}
	defer mallRows.Close()
	for mallRows.Next() {
		var mall string
		var n int
		if err := mallRows.Scan(&mall, &n); err != nil {
			return agg, err
		}
		agg.MallCounts[mall] = n
	}
	return agg, mallRows.Err()
}

func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	stats := Stats{Categories: make(map[string]int64), MonthlySpending: make(map[string]int64)}

	var avg sql.NullFloat64
	var totalSpent sql.NullInt64
	var count int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), SUM(price*quantity), AVG(price*quantity)
		FROM purchase_records WHERE user_id = $1`, userID,
	).Scan(&count, &totalSpent, &avg); err != nil {
		return stats, err
	}
	stats.TotalPurchases = count
	stats.TotalSpent = totalSpent.Int64
	stats.AveragePrice = avg.Float64

	catRows, err := s.db.Query(ctx, `
		SELECT COALESCE(category, '기타'), SUM(price*quantity)
		FROM purchase_records WHERE user_id = $1 GROUP BY category`, userID)
	if err != nil {
		return stats, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cat string
		var sum int64
		if err := catRows.Scan(&cat, &sum); err != nil {
			return stats, err
		}
		stats.Categories[cat] = sum
	}
	if err := catRows.Err(); err != nil {
		return stats, err
	}

	monthRows, err := s.db.Query(ctx, `
		SELECT to_char(purchased_at, 'YYYY-MM'), SUM(price*quantity)
		FROM purchase_records WHERE user_id = $1 GROUP BY 1`, userID)
	if err != nil {
		return stats, err
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var month string
		var sum int64
		if err := monthRows.Scan(&month, &sum); err != nil {
			return stats, err
		}
		stats.MonthlySpending[month] = sum
	}
	return stats, monthRows.Err()
}

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var r Record
	var category, mallName sql.NullString
	var notes sql.NullString
	err := row.Scan(&r.ID, &r.UserID, &r.ProductName, &category, &mallName, &r.Price, &r.Quantity, &r.PurchasedAt, &notes, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Category, r.MallName = category.String, mallName.String
	if notes.Valid {
		r.Notes = &notes.String
	}
	return &r, nil
}
