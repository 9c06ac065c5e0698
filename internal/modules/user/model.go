// Package user holds the account aggregate: social login identity,
// messenger linkage for price-alert delivery, and the notification toggles
// the dispatcher checks before each channel attempt.
package user

import "time"

type User struct {
	ID                      string
	Email                   *string
	Name                    *string
	ProfileImage            *string
	Provider                string
	ProviderID              string
	MessengerID             *string
	MessengerAccessToken    *string
	MessengerRefreshToken   *string
	MessengerTokenExpiresAt *time.Time
	MessengerNotification   bool
	EmailNotification       bool
	NotificationEmail       *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
	LastLoginAt             *time.Time
	Active                  bool
}

// NotificationEmailOrDefault returns the address the notification
// dispatcher should prefer: the explicit notification_email if set, else
// the account's login email.
func (u *User) NotificationEmailOrDefault() (string, bool) {
	if u.NotificationEmail != nil && *u.NotificationEmail != "" {
		return *u.NotificationEmail, true
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email, true
	}
	return "", false
}

// HasMessengerToken reports whether the account has a usable messenger
// access token for the price-alert push channel.
func (u *User) HasMessengerToken() bool {
	return u.MessengerAccessToken != nil && *u.MessengerAccessToken != ""
}
