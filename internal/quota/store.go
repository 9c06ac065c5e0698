package quota

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles chat_quota persistence: one row per user, reset lazily on
// the first use of a new calendar month rather than by a separate cron job.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UseTurn atomically checks the monthly allowance and deducts one turn,
// resetting the counter first if last_reset_month is behind the current
// month. Returns ErrExhausted when no row is updated — either the quota is
// exhausted for the current month, or the user has no row yet.
func (s *Store) UseTurn(ctx context.Context, userID string) error {
	month := time.Now().Format("2006-01")

	tag, err := s.db.Exec(ctx, `
		UPDATE chat_quota SET
			turns_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE turns_remaining - 1 END,
			last_reset_month = $1
		WHERE user_id = $3 AND (last_reset_month < $1 OR turns_remaining > 0)
	`, month, DefaultMonthlyTurns, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

// EnsureUser inserts a fresh chat_quota row for userID with the default
// allowance, a no-op if the row already exists. Returns whether a row was
// actually inserted, so UseTurn's caller can tell "brand new user" apart
// from "quota exhausted this month" without a second query.
func (s *Store) EnsureUser(ctx context.Context, userID string) (created bool, err error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO chat_quota (user_id, turns_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, DefaultMonthlyTurns, time.Now().Format("2006-01"))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
