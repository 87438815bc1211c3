package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mealbridge/mealbridge-api/internal/api/handler"
	"github.com/mealbridge/mealbridge-api/internal/api/middleware"
	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/service"
	"github.com/mealbridge/mealbridge-api/internal/infrastructure/config"
	mongodb "github.com/mealbridge/mealbridge-api/internal/infrastructure/db/mongo"
	redisdb "github.com/mealbridge/mealbridge-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, audit service.AuditSink, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	e.Use(echoprometheus.NewMiddleware("mealbridge"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	donationRepo := mongodb.NewDonationRepository(db)
	cache := redisdb.NewDonationCache(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	donationService := service.NewDonationService(donationRepo, userRepo, cache, audit, log)

	authHandler := handler.NewAuthHandler(authService)
	donationHandler := handler.NewDonationHandler(donationService)

	authRequired := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authRequired)

	// --- Donation routes ---
	donations := e.Group("/api/donations")
	donations.GET("", donationHandler.List)
	donations.GET("/:id", donationHandler.Get)
	donations.POST("", donationHandler.Create, authRequired)
	donations.PUT("/:id", donationHandler.Update, authRequired)
	donations.DELETE("/:id", donationHandler.Delete, authRequired)
	donations.PUT("/:id/reserve", donationHandler.Reserve, authRequired, middleware.RBAC(domain.RoleRecipient))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadsDir)

	return e
}
