// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KHY90/cartpilot-backend/internal/agents"
	"github.com/KHY90/cartpilot-backend/internal/ai"
	"github.com/KHY90/cartpilot-backend/internal/cache"
	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/config"
	httptransport "github.com/KHY90/cartpilot-backend/internal/http"
	"github.com/KHY90/cartpilot-backend/internal/infra"
	"github.com/KHY90/cartpilot-backend/internal/logging"
	"github.com/KHY90/cartpilot-backend/internal/modules/purchase"
	"github.com/KHY90/cartpilot-backend/internal/modules/rating"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
	"github.com/KHY90/cartpilot-backend/internal/notify"
	"github.com/KHY90/cartpilot-backend/internal/preference"
	"github.com/KHY90/cartpilot-backend/internal/pricing"
	"github.com/KHY90/cartpilot-backend/internal/quota"
	"github.com/KHY90/cartpilot-backend/internal/scheduler"
	"github.com/KHY90/cartpilot-backend/internal/session"
)

func main() {
	cfg, err := config.Load(os.Getenv("CARTPILOT_CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWT.Secret == "" {
		logger.Fatal("CARTPILOT_JWT_SECRET is required")
	}
	issuer, err := infra.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Algorithm, time.Duration(cfg.JWT.ExpiryMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatalf("db init: %v", err)
	}
	redisClient := infra.NewRedis(cfg.Redis.Addr)

	provider, err := ai.New(ctx, cfg.AI)
	if err != nil {
		logger.Fatalf("ai provider init: %v", err)
	}

	gateway := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.ClientID, cfg.Catalog.ClientSecret,
		time.Duration(cfg.Catalog.TimeoutSec)*time.Second, cfg.Catalog.MaxRetries, cfg.Catalog.RatePerSecond)
	resultCache := cache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)

	wishlists := wishlist.NewStore(db)
	ratings := rating.NewStore(db)
	purchases := purchase.NewStore(db)
	users := user.NewStore(db)

	analyzer := agents.NewAnalyzer(provider)
	gift := agents.NewGiftAgent(gateway, provider, resultCache)
	value := agents.NewValueAgent(gateway, provider, resultCache)
	bundle := agents.NewBundleAgent(gateway, provider, resultCache)
	review := agents.NewReviewAgent(gateway, provider, resultCache)
	trend := agents.NewTrendAgent(gateway, provider, resultCache)
	orchestrator := agents.NewOrchestrator(analyzer, gift, value, bundle, review, trend)

	preferenceAnalyzer := preference.NewAnalyzer(purchases, ratings, wishlists)
	sessions := session.NewStore(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	quotaSvc := quota.NewService(quota.NewStore(db))

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

	svc := &httptransport.Services{
		Config:        cfg,
		Log:           logger,
		Sessions:      sessions,
		Orchestrator:  orchestrator,
		Analyzer:      preferenceAnalyzer,
		Quota:         quotaSvc,
		TokenVerifier: issuer,
		Wishlists:     wishlists,
		Ratings:       ratings,
		Purchases:     purchases,
		Users:         users,
		Scheduler:     sched,
		Monitor:       monitor,
	}
	router := httptransport.NewRouter(svc)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal(err)
	}
}
