// README: Operator CLI for the jobs and lookups an admin would otherwise
// need a raw SQL console for: manual price-monitor runs and per-item checks.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KHY90/cartpilot-backend/internal/catalog"
	"github.com/KHY90/cartpilot-backend/internal/config"
	"github.com/KHY90/cartpilot-backend/internal/infra"
	"github.com/KHY90/cartpilot-backend/internal/logging"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
	"github.com/KHY90/cartpilot-backend/internal/notify"
	"github.com/KHY90/cartpilot-backend/internal/pricing"
)

var rootCmd = &cobra.Command{
	Use:   "cartpilot-cli",
	Short: "CartPilot operator CLI",
}

func newMonitor(ctx context.Context) (*pricing.Monitor, func(), error) {
	cfg, err := config.Load(os.Getenv("CARTPILOT_CONFIG_FILE"))
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Logging)

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, nil, err
	}
	redisClient := infra.NewRedis(cfg.Redis.Addr)

	wishlists := wishlist.NewStore(db)
	users := user.NewStore(db)
	gateway := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.ClientID, cfg.Catalog.ClientSecret,
		time.Duration(cfg.Catalog.TimeoutSec)*time.Second, cfg.Catalog.MaxRetries, cfg.Catalog.RatePerSecond)
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{Host: cfg.SMTP.Host, User: cfg.SMTP.User, Pass: cfg.SMTP.Password, From: cfg.SMTP.From})
	dispatcher := notify.NewDispatcher(nil, mailer, wishlists, redisClient, logger)

	monitor := pricing.NewMonitor(wishlists, users, gateway, dispatcher, logger)
	return monitor, func() { db.Close(); redisClient.Close() }, nil
}

var runPriceMonitorCmd = &cobra.Command{
	Use:   "run-price-monitor",
	Short: "run the price monitor's checkAll sweep once and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		monitor, cleanup, err := newMonitor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := monitor.CheckAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("checked=%d updated=%d alerts_sent=%d errors=%d\n", summary.Checked, summary.Updated, summary.AlertsSent, summary.Errors)
		return nil
	},
}

var checkItemCmd = &cobra.Command{
	Use:   "check-item [wishlist-item-id]",
	Short: "re-check a single wishlist item's price and alert if warranted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		monitor, cleanup, err := newMonitor(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		item, alertSent, err := monitor.CheckSingle(ctx, args[0])
		if err != nil {
			return err
		}
		lowest := item.CurrentPrice
		if item.LowestPrice90Days != nil {
			lowest = *item.LowestPrice90Days
		}
		fmt.Printf("item=%s current_price=%d lowest_90d=%d alert_sent=%t\n", item.ID, item.CurrentPrice, lowest, alertSent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runPriceMonitorCmd, checkItemCmd)
}

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
