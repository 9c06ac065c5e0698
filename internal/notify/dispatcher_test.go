package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
)

type fakeMessenger struct {
	err   error
	calls int
}

func (f *fakeMessenger) SendPriceAlert(ctx context.Context, accessToken, productName string, currentPrice, lowestPrice int64, productLink string) error {
	f.calls++
	return f.err
}

type fakeMailer struct {
	err   error
	calls int
}

func (f *fakeMailer) SendPriceAlert(ctx context.Context, toEmail, productName string, currentPrice, lowestPrice int64, productLink, productImage string) error {
	f.calls++
	return f.err
}

type fakeWishlistUpdater struct {
	marked bool
}

func (f *fakeWishlistUpdater) MarkNotified(ctx context.Context, id string, at time.Time) error {
	f.marked = true
	return nil
}

func testUser(messengerToken string) *user.User {
	email := "a@example.com"
	u := &user.User{ID: "u1", Email: &email, MessengerNotification: true, EmailNotification: true, Active: true}
	if messengerToken != "" {
		u.MessengerAccessToken = &messengerToken
	}
	return u
}

func TestDispatcher_SendPriceAlert_PrefersMessengerChannel(t *testing.T) {
	messenger := &fakeMessenger{}
	mailer := &fakeMailer{}
	updater := &fakeWishlistUpdater{}
	d := NewDispatcher(messenger, mailer, updater, nil, logrus.New())

	sent, err := d.SendPriceAlert(context.Background(), testUser("token"), &wishlist.Item{ID: "i1", NotificationEnabled: true}, 45_000, 45_000)

	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, messenger.calls)
	assert.Equal(t, 0, mailer.calls)
	assert.True(t, updater.marked)
}

func TestDispatcher_SendPriceAlert_FallsBackToEmailWhenMessengerFails(t *testing.T) {
	messenger := &fakeMessenger{err: errors.New("boom")}
	mailer := &fakeMailer{}
	updater := &fakeWishlistUpdater{}
	d := NewDispatcher(messenger, mailer, updater, nil, logrus.New())

	sent, err := d.SendPriceAlert(context.Background(), testUser("token"), &wishlist.Item{ID: "i1", NotificationEnabled: true}, 45_000, 45_000)

	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, mailer.calls)
}

func TestDispatcher_SendPriceAlert_SkipsWithinCooldownWindow(t *testing.T) {
	messenger := &fakeMessenger{}
	mailer := &fakeMailer{}
	updater := &fakeWishlistUpdater{}
	d := NewDispatcher(messenger, mailer, updater, nil, logrus.New())

	lastNotified := time.Now().Add(-1 * time.Hour)
	item := &wishlist.Item{ID: "i1", NotificationEnabled: true, LastNotifiedAt: &lastNotified}

	sent, err := d.SendPriceAlert(context.Background(), testUser("token"), item, 45_000, 45_000)

	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, messenger.calls)
	assert.Equal(t, 0, mailer.calls)
}

func TestDispatcher_SendBulk_CountsSentFailedSkipped(t *testing.T) {
	messenger := &fakeMessenger{}
	mailer := &fakeMailer{}
	updater := &fakeWishlistUpdater{}
	d := NewDispatcher(messenger, mailer, updater, nil, logrus.New())

	lastNotified := time.Now().Add(-1 * time.Hour)
	alerts := []Alert{
		{User: testUser("token"), Item: &wishlist.Item{ID: "i1", NotificationEnabled: true}, CurrentPrice: 10_000, LowestPrice: 10_000},
		{User: testUser("token"), Item: &wishlist.Item{ID: "i2", NotificationEnabled: true, LastNotifiedAt: &lastNotified}, CurrentPrice: 10_000, LowestPrice: 10_000},
	}

	result := d.SendBulk(context.Background(), alerts)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}
