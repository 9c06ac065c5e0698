// Package http wires the gin engine: middleware chain, route table, and the
// Services bundle every handler is constructed from.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-contrib/cors"
	"github.com/sirupsen/logrus"

	"github.com/KHY90/cartpilot-backend/internal/agents"
	"github.com/KHY90/cartpilot-backend/internal/config"
	"github.com/KHY90/cartpilot-backend/internal/http/handlers"
	"github.com/KHY90/cartpilot-backend/internal/http/middleware"
	"github.com/KHY90/cartpilot-backend/internal/infra"
	"github.com/KHY90/cartpilot-backend/internal/modules/purchase"
	"github.com/KHY90/cartpilot-backend/internal/modules/rating"
	"github.com/KHY90/cartpilot-backend/internal/modules/user"
	"github.com/KHY90/cartpilot-backend/internal/modules/wishlist"
	"github.com/KHY90/cartpilot-backend/internal/preference"
	"github.com/KHY90/cartpilot-backend/internal/pricing"
	"github.com/KHY90/cartpilot-backend/internal/quota"
	"github.com/KHY90/cartpilot-backend/internal/scheduler"
	"github.com/KHY90/cartpilot-backend/internal/session"
)

// Services is the explicit composition root §9's design note replaces the
// teacher's package-level singletons with: every dependency a handler
// needs is constructed once in cmd/ and passed in here, nothing is reached
// for through a global.
type Services struct {
	Config       config.Config
	Log          *logrus.Logger
	Sessions     *session.Store
	Orchestrator *agents.Orchestrator
	Analyzer     *preference.Analyzer
	Quota        *quota.Service
	TokenVerifier infra.TokenVerifier
	Wishlists    *wishlist.Store
	Ratings      *rating.Store
	Purchases    *purchase.Store
	Users        *user.Store
	Scheduler    *scheduler.Scheduler
	Monitor      *pricing.Monitor
}

func NewRouter(svc *Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(svc.Log), middleware.Logging(svc.Log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = svc.Config.HTTP.CORSOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	auth := middleware.Auth(svc.TokenVerifier)
	requireAuth := middleware.RequireAuth()

	chat := handlers.NewChatHandler(svc.Sessions, svc.Orchestrator, svc.Analyzer, svc.Quota, svc.Log)
	r.POST("/chat", auth, chat.Send)

	health := handlers.NewHealthHandler(svc.Config, svc.Sessions)
	r.GET("/health", health.Check)

	wishlistH := handlers.NewWishlistHandler(svc.Wishlists)
	wl := r.Group("/wishlist", auth, requireAuth)
	{
		wl.GET("", wishlistH.List)
		wl.POST("", wishlistH.Create)
		wl.PUT("/:id", wishlistH.Update)
		wl.DELETE("/:id", wishlistH.Delete)
		wl.GET("/:id/price-history", wishlistH.PriceHistory)
	}

	ratingH := handlers.NewRatingHandler(svc.Ratings, svc.Analyzer)
	rt := r.Group("/ratings", auth, requireAuth)
	{
		rt.POST("", ratingH.Upsert)
		rt.GET("", ratingH.List)
		rt.DELETE("/:product_id", ratingH.Delete)
		rt.GET("/preferences", ratingH.Preferences)
	}

	purchaseH := handlers.NewPurchaseHandler(svc.Purchases)
	pu := r.Group("/purchases", auth, requireAuth)
	{
		pu.POST("", purchaseH.Create)
		pu.GET("", purchaseH.List)
		pu.GET("/stats", purchaseH.Stats)
		pu.GET("/:id", purchaseH.Get)
		pu.PUT("/:id", purchaseH.Update)
		pu.DELETE("/:id", purchaseH.Delete)
	}

	userH := handlers.NewUserHandler(svc.Users)
	us := r.Group("/users", auth, requireAuth)
	{
		us.GET("/me", userH.Me)
		us.PATCH("/me/notifications", userH.UpdateNotificationPrefs)
	}

	adminH := handlers.NewAdminHandler(svc.Scheduler, svc.Monitor)
	adm := r.Group("/admin", auth, requireAuth)
	{
		adm.GET("/scheduler", adminH.SchedulerStatus)
		adm.POST("/price-monitor/run", adminH.TriggerPriceMonitoring)
		adm.POST("/price-monitor/items/:id/check", adminH.CheckItem)
	}

	return r
}
