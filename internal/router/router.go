package router

import (
	"context"
	"time"

	"github.com/ajitseee/sweetshop/internal/cache"
	"github.com/ajitseee/sweetshop/internal/config"
	"github.com/ajitseee/sweetshop/internal/handler"
	"github.com/ajitseee/sweetshop/internal/middleware"
	"github.com/ajitseee/sweetshop/internal/model"
	"github.com/ajitseee/sweetshop/internal/repository"
	"github.com/ajitseee/sweetshop/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil, which disables the catalog cache. ctx bounds the
// background goroutines owned by the router (rate limiter purges).
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewRateLimiter("api", cfg.RateLimitPerMinute, time.Minute,
		"Too many requests. Please try again shortly.")
	authLimiter := middleware.NewRateLimiter("auth", cfg.LoginRateLimitPerMinute, time.Minute,
		"Too many authentication attempts. Try again in a minute.")
	apiLimiter.StartPurge(ctx)
	authLimiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Handler())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	sweetRepo := repository.NewSweetRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	sweetSvc := service.NewSweetService(sweetRepo, cache.NewCatalogCache(rdb, cfg.CacheTTL()))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sweetsH := handler.NewSweetsHandler(sweetSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/api/auth", authLimiter.Handler())
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
	}

	// Protected routes
	sweets := r.Group("/api/sweets", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Any authenticated user
		sweets.GET("", sweetsH.List)
		sweets.GET("/search", sweetsH.Search)
		sweets.GET("/:id", sweetsH.Get)
		sweets.POST("/:id/purchase", sweetsH.Purchase)

		// Write operations, admin only
		admin := sweets.Group("", middleware.RequireRole(model.RoleAdmin))
		{
			admin.POST("", sweetsH.Create)
			admin.PUT("/:id", sweetsH.Update)
			admin.DELETE("/:id", sweetsH.Delete)
			admin.POST("/:id/restock", sweetsH.Restock)
		}
	}

	// Swagger UI only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
