package rating

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("rating not found")
var ErrInvalidValue = errors.New("rating must be between 1 and 5")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert inserts or updates a rating keyed by (user_id, product_id).
func (s *Store) Upsert(ctx context.Context, r *Rating) error {
	if r.Value < 1 || r.Value > 5 {
		return ErrInvalidValue
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO product_ratings (id, user_id, product_id, product_name, category, rating, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET rating = EXCLUDED.rating, product_name = EXCLUDED.product_name,
		    category = EXCLUDED.category, updated_at = EXCLUDED.updated_at`,
		r.ID, r.UserID, r.ProductID, r.ProductName, r.Category, r.Value, now,
	)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID string, category string) ([]*Rating, error) {
	var rows interface {
		Next() bool
		Scan(...any) error
		Err() error
		Close()
	}
	var err error
	if category != "" {
		rows, err = s.db.Query(ctx, `
			SELECT id, user_id, product_id, product_name, category, rating, created_at, updated_at
			FROM product_ratings WHERE user_id = $1 AND category = $2 ORDER BY updated_at DESC`, userID, category)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT id, user_id, product_id, product_name, category, rating, created_at, updated_at
			FROM product_ratings WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*Rating
	for rows.Next() {
		var r Rating
		var productName, cat sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &productName, &cat, &r.Value, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.ProductName, r.Category = productName.String, cat.String
		ratings = append(ratings, &r)
	}
	return ratings, rows.Err()
}

// AverageAndHighRatedNames returns the user's average rating and the
// product names of every rating >= 4, newest first. The preference
// analyzer caps and tokenizes the name list itself.
func (s *Store) AverageAndHighRatedNames(ctx context.Context, userID string) (avg float64, highRatedNames []string, err error) {
	var avgNull sql.NullFloat64
	if err = s.db.QueryRow(ctx, `SELECT AVG(rating) FROM product_ratings WHERE user_id = $1`, userID).Scan(&avgNull); err != nil {
		return 0, nil, err
	}
	if avgNull.Valid {
		avg = avgNull.Float64
	}

	rows, err := s.db.Query(ctx, `
		SELECT product_name FROM product_ratings
		WHERE user_id = $1 AND rating >= 4
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return 0, nil, err
		}
		if name.Valid && name.String != "" {
			highRatedNames = append(highRatedNames, name.String)
		}
	}
	return avg, highRatedNames, rows.Err()
}

func (s *Store) Delete(ctx context.Context, userID, productID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM product_ratings WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
