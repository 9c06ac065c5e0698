// README: Entry point; runs the scheduled price-monitoring jobs with no
// HTTP surface, the §4.13 scheduler's own process.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/config"
	"github.com/KHY90/cartpilot-backend/internal/infra"
	"github.com/KHY90/cartpilot-backend/internal/logging"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
	"github.com/KHY90/cartpilot-backend/internal/notify"
	"github.com/KHY90/cartpilot-backend/internal/pricing"
	"github.com/KHY90/cartpilot-backend/internal/scheduler"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARTPILOT_CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	redisClient := infra.NewRedis(cfg.Redis.Addr)

	wishlists := wishlist.NewStore(db)
	users := user.NewStore(db)

	gateway := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.ClientID, cfg.Catalog.ClientSecret,
		time.Duration(cfg.Catalog.TimeoutSec)*time.Second, cfg.Catalog.MaxRetries, cfg.Catalog.RatePerSecond)

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host: cfg.SMTP.Host,
		Port: strconv.Itoa(cfg.SMTP.Port),
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Password,
		From: cfg.SMTP.From,
	})
	var messenger notify.Messenger
	if cfg.Messenger.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Messenger.BotToken)
		if err != nil {
			logger.WithError(err).Warn("텔레그램 봇 초기화 실패, 메신저 알림 비활성화")
		} else {
			messenger = notify.NewTelegramMessenger(bot)
		}
	}
	dispatcher := notify.NewDispatcher(messenger, mailer, wishlists, redisClient, logger)
	monitor := pricing.NewMonitor(wishlists, users, gateway, dispatcher, logger)

	sched := scheduler.New(logger)
	err = sched.RegisterDefaults(
		func(ctx context.Context) error {
			_, err := monitor.CheckAll(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := monitor.CheckAll(ctx)
			return err
		},
		func(ctx context.Context) error {
			_, err := wishlists.DeleteOlderThan(ctx, pricing.PriceHistoryRetention)
			return err
		},
	)
	if err != nil {
		logger.Fatalf("scheduler register: %v", err)
	}

	sched.Start()
	logger.Info("스케줄러 시작")

	<-ctx.Done()
	logger.Info("스케줄러 종료 중")
	sched.Stop()
}
