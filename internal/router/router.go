package router

import (
	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/config"
	"github.com/santechrwanda/broker-sub002/internal/handler"
	"github.com/santechrwanda/broker-sub002/internal/middleware"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// The market service and dispatcher are built at the composition root
// (cmd/server) because the feed cron and worker pool share them.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.Dispatcher, marketSvc service.MarketService) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Auth primitives ──────────────────────────────────────────────────────
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, hasher, tokens, dispatcher, cfg)
	userSvc := service.NewUserService(userRepo, hasher)
	tradeSvc := service.NewTradeService(tradeRepo, cfg.CommissionRate)
	reportSvc := service.NewReportService(reportRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc)
	marketH := handler.NewMarketHandler(marketSvc)
	tradesH := handler.NewTradesHandler(tradeSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, marketSvc))

	// Auth (public)
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/forgot-password", authH.ForgotPassword)
		authGroup.POST("/reset-password", authH.ResetPassword)
	}

	// Protected routes — the gate resolves the identity against the current
	// directory state before any handler runs.
	gate := middleware.Authenticate(authSvc)
	v1 := r.Group("/v1", gate)
	{
		v1.GET("/auth/me", authH.Me)

		// User directory — admin only
		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.PUT("/:id", usersH.Update)
			users.PATCH("/:id/status", usersH.ChangeStatus)
			users.DELETE("/:id", usersH.Delete)
			users.POST("/import", usersH.Import)
		}

		// Market board — read for everyone, write for admin/manager
		v1.GET("/market/securities", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleTeller), marketH.List)
		v1.GET("/market/securities/:symbol", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleTeller), marketH.GetBySymbol)
		market := v1.Group("/market", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			market.POST("/securities", marketH.Upsert)
			market.POST("/refresh", marketH.Refresh)
		}

		// Trades — every role records and lists; tellers only see their own
		v1.POST("/trades", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleTeller), tradesH.Record)
		v1.GET("/trades", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleTeller), tradesH.List)

		// Commission reports — admin/manager
		reports := v1.Group("/reports", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			reports.POST("", reportsH.Request)
			reports.GET("", reportsH.List)
			reports.GET("/:id", reportsH.Get)
			reports.GET("/:id/download", reportsH.Download)
		}
	}

	return r
}
