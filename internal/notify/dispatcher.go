// Package notify implements the price-alert dispatcher: a messenger push
// via Telegram's "send to self" pattern, falling back to SMTP email, with
// a 24-hour per-item cooldown.
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
	"github.com/KHY90/cartpilot-backend/internal/types"
)

// MinNotificationInterval is the per-item cooldown: a second alert for the
// same item within this window is skipped.
const MinNotificationInterval = 24 * time.Hour

// Messenger sends a price alert through the messenger push channel (a
// Telegram bot posting to the user's linked chat, standing in for the
// source's Kakao "나에게 보내기").
type Messenger interface {
	SendPriceAlert(ctx context.Context, accessToken, productName string, currentPrice, lowestPrice int64, productLink string) error
}

// Mailer sends a price alert by email, the fallback channel.
type Mailer interface {
	SendPriceAlert(ctx context.Context, toEmail, productName string, currentPrice, lowestPrice int64, productLink, productImage string) error
}

// WishlistUpdater is the subset of wishlist.Store the dispatcher needs to
// record a successful send.
type WishlistUpdater interface {
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// Dispatcher is the §4.12 notification dispatcher.
type Dispatcher struct {
	messenger Messenger
	mailer    Mailer
	wishlists WishlistUpdater
	// cooldown is a best-effort accelerator: the database's
	// last_notified_at column is the source of truth (see
	// shouldSend), this just avoids a wasted channel attempt when
	// Redis is warm.
	cooldown *redis.Client
	log      *logrus.Logger
}

func NewDispatcher(messenger Messenger, mailer Mailer, wishlists WishlistUpdater, cooldown *redis.Client, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{messenger: messenger, mailer: mailer, wishlists: wishlists, cooldown: cooldown, log: log}
}

func cooldownKey(itemID string) string {
	return "notif:cooldown:" + itemID
}

// SendPriceAlert attempts the messenger channel first, then email, per
// §4.12's channel order. Both channels failing, or neither being
// eligible, reports sent=false without error — a notification failure is
// never fatal to the caller's run.
func (d *Dispatcher) SendPriceAlert(ctx context.Context, u *user.User, item *wishlist.Item, currentPrice, lowestPrice int64) (bool, error) {
	if !d.shouldSend(ctx, item) {
		d.log.WithField("item_id", item.ID).Debug("알림 스킵 (최근 알림 발송됨)")
		return false, nil
	}

	sent := false

	if u.MessengerNotification && u.HasMessengerToken() {
		if err := d.messenger.SendPriceAlert(ctx, *u.MessengerAccessToken, item.ProductName, currentPrice, lowestPrice, item.Link); err != nil {
			d.log.WithFields(logrus.Fields{"user_id": u.ID, "error": err}).Error("메신저 알림 전송 실패")
		} else {
			sent = true
		}
	}

	if !sent && u.EmailNotification {
		if email, ok := u.NotificationEmailOrDefault(); ok {
			if err := d.mailer.SendPriceAlert(ctx, email, item.ProductName, currentPrice, lowestPrice, item.Link, item.Image); err != nil {
				d.log.WithFields(logrus.Fields{"user_id": u.ID, "error": err}).Error("이메일 알림 전송 실패")
			} else {
				sent = true
			}
		}
	}

	if sent {
		now := time.Now()
		if err := d.wishlists.MarkNotified(ctx, item.ID, now); err != nil {
			return true, err
		}
		if d.cooldown != nil {
			d.cooldown.Set(ctx, cooldownKey(item.ID), "1", MinNotificationInterval)
		}
	}

	return sent, nil
}

// shouldSend reports whether a price alert is currently eligible: the item
// must have notifications enabled and must not have been notified within
// the cooldown window. The DB's last_notified_at is checked first and is
// authoritative; Redis is consulted after it, and a missing client or a
// read error never blocks a send the database would have allowed.
func (d *Dispatcher) shouldSend(ctx context.Context, item *wishlist.Item) bool {
	if !item.NotificationEnabled {
		return false
	}
	if item.LastNotifiedAt != nil && time.Since(*item.LastNotifiedAt) < MinNotificationInterval {
		return false
	}
	if d.cooldown != nil {
		if exists, err := d.cooldown.Exists(ctx, cooldownKey(item.ID)).Result(); err == nil && exists > 0 {
			return false
		}
	}
	return true
}

// Alert is one tuple of the bulk-send form's input.
type Alert struct {
	User         *user.User
	Item         *wishlist.Item
	CurrentPrice int64
	LowestPrice  int64
}

// BulkResult is the bulk form's {sent, failed, skipped} counts.
type BulkResult struct {
	Sent    int
	Failed  int
	Skipped int
}

// SendBulk iterates alerts sequentially; one alert's failure is logged and
// counted, never aborting the remaining sends.
func (d *Dispatcher) SendBulk(ctx context.Context, alerts []Alert) BulkResult {
	var result BulkResult
	for _, a := range alerts {
		sent, err := d.SendPriceAlert(ctx, a.User, a.Item, a.CurrentPrice, a.LowestPrice)
		switch {
		case err != nil:
			d.log.WithField("error", err).Error("알림 전송 중 오류")
			result.Failed++
		case sent:
			result.Sent++
		default:
			result.Skipped++
		}
	}
	return result
}

// TelegramMessenger is the Messenger implementation backing production use:
// it parses the token it is handed (the dispatcher passes the user's stored
// messenger access token) as a Telegram chat id and posts to that chat, the
// "send to self" analogue of the source's Kakao channel.
type TelegramMessenger struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramMessenger(bot *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

func (m *TelegramMessenger) SendPriceAlert(ctx context.Context, chatIDToken, productName string, currentPrice, lowestPrice int64, productLink string) error {
	chatID, err := parseChatID(chatIDToken)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"가격 알림\n%s\n현재가: %s\n90일 최저가: %s\n%s",
		productName, types.Won(currentPrice).Display(), types.Won(lowestPrice).Display(), productLink,
	)
	msg := tgbotapi.NewMessage(chatID, text)
	_, err = m.bot.Send(msg)
	return err
}

func parseChatID(s string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(s, "%d", &id)
	return id, err
}
