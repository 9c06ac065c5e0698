package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (
			id, email, name, profile_image, provider, provider_id,
			messenger_notification, email_notification, notification_email,
			created_at, updated_at, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID, u.Email, u.Name, u.ProfileImage, u.Provider, u.ProviderID,
		u.MessengerNotification, u.EmailNotification, u.NotificationEmail,
		u.CreatedAt, u.UpdatedAt, u.Active,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, name, profile_image, provider, provider_id,
		       messenger_id, messenger_access_token, messenger_refresh_token, messenger_token_expires_at,
		       messenger_notification, email_notification, notification_email,
		       created_at, updated_at, last_login_at, active
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) GetByProvider(ctx context.Context, provider, providerID string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, name, profile_image, provider, provider_id,
		       messenger_id, messenger_access_token, messenger_refresh_token, messenger_token_expires_at,
		       messenger_notification, email_notification, notification_email,
		       created_at, updated_at, last_login_at, active
		FROM users WHERE provider = $1 AND provider_id = $2`, provider, providerID)
	return scanUser(row)
}

func (s *Store) UpdateNotificationPrefs(ctx context.Context, id string, messengerEnabled, emailEnabled bool, notificationEmail *string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET messenger_notification = $1, email_notification = $2, notification_email = $3, updated_at = NOW()
		WHERE id = $4`,
		messengerEnabled, emailEnabled, notificationEmail, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateMessengerLink(ctx context.Context, id, messengerID string, accessToken, refreshToken *string, expiresAt *time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET messenger_id = $1, messenger_access_token = $2, messenger_refresh_token = $3,
		    messenger_token_expires_at = $4, updated_at = NOW()
		WHERE id = $5`,
		messengerID, accessToken, refreshToken, expiresAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var email, name, profileImage sql.NullString
	var messengerID, messengerAccessToken, messengerRefreshToken, notificationEmail sql.NullString
	var messengerTokenExpiresAt, lastLoginAt sql.NullTime

	err := row.Scan(
		&u.ID, &email, &name, &profileImage, &u.Provider, &u.ProviderID,
		&messengerID, &messengerAccessToken, &messengerRefreshToken, &messengerTokenExpiresAt,
		&u.MessengerNotification, &u.EmailNotification, &notificationEmail,
		&u.CreatedAt, &u.UpdatedAt, &lastLoginAt, &u.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Email = toStrPtr(email)
	u.Name = toStrPtr(name)
	u.ProfileImage = toStrPtr(profileImage)
	u.MessengerID = toStrPtr(messengerID)
	u.MessengerAccessToken = toStrPtr(messengerAccessToken)
	u.MessengerRefreshToken = toStrPtr(messengerRefreshToken)
	u.NotificationEmail = toStrPtr(notificationEmail)
	if messengerTokenExpiresAt.Valid {
		u.MessengerTokenExpiresAt = &messengerTokenExpiresAt.Time
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return &u, nil
}

func toStrPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
