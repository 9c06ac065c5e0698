package quota

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestUseTurn_CrossMonthReset verifies a user with 0 turns left from a
// past month is reset and the request succeeds.
func TestUseTurn_CrossMonthReset(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO chat_quota VALUES ('user_reset', 0, '2000-01')")
	require.NoError(t, err)

	require.NoError(t, svc.UseTurn(ctx, "user_reset"))

	var remaining int
	require.NoError(t, db.QueryRow(ctx, "SELECT turns_remaining FROM chat_quota WHERE user_id = 'user_reset'").Scan(&remaining))
	require.Equal(t, DefaultMonthlyTurns-1, remaining)
}

// TestUseTurn_ExhaustedCurrentMonth verifies a user with 0 turns in the
// current month is blocked.
func TestUseTurn_ExhaustedCurrentMonth(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO chat_quota (user_id, turns_remaining, last_reset_month) VALUES ('user_zero', 0, TO_CHAR(NOW(), 'YYYY-MM'))")
	require.NoError(t, err)

	err = svc.UseTurn(ctx, "user_zero")
	require.ErrorIs(t, err, ErrExhausted)
}

// TestUseTurn_NewUser verifies a user absent from the table is
// initialized on first use.
func TestUseTurn_NewUser(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UseTurn(ctx, "user_new"))

	var remaining int
	require.NoError(t, db.QueryRow(ctx, "SELECT turns_remaining FROM chat_quota WHERE user_id = 'user_new'").Scan(&remaining))
	require.Equal(t, DefaultMonthlyTurns-1, remaining)
}

func setupTestService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("CARTPILOT_TEST_DSN")
	if dsn == "" {
		t.Skip("CARTPILOT_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, "TRUNCATE TABLE chat_quota")
	require.NoError(t, err)

	return NewService(NewStore(db)), db
}
