package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finwave/cards-api/internal/api/handler"
	"github.com/finwave/cards-api/internal/api/middleware"
	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/service"
	mongodb "github.com/finwave/cards-api/internal/infrastructure/db/mongo"
	redisdb "github.com/finwave/cards-api/internal/infrastructure/db/redis"
	"github.com/finwave/cards-api/internal/security/cardcrypto"
	"github.com/finwave/cards-api/internal/security/token"
)

// RouterDeps carries the shared infrastructure the router wires handlers to.
type RouterDeps struct {
	DB        *mongo.Database
	Redis     *goredis.Client
	Codec     *token.Codec
	Encryptor *cardcrypto.Encryptor
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("cards"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	cardRepo := mongodb.NewCardRepository(deps.DB)
	tokenRepo := mongodb.NewTokenRepository(deps.DB)
	tx := mongodb.NewTransactor(deps.DB)
	revocation := redisdb.NewRevocationCache(deps.Redis)

	// --- Services ---
	authService := service.NewAuthService(userRepo, tokenRepo, tx, deps.Codec, revocation, deps.Log)
	cardService := service.NewCardService(cardRepo, userRepo, deps.Encryptor, deps.Log)
	transferService := service.NewTransferService(cardRepo, userRepo, tx, deps.Log)
	adminService := service.NewAdminService(userRepo, cardRepo, tokenRepo, tx, deps.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	cardHandler := handler.NewCardHandler(cardService)
	transferHandler := handler.NewTransferHandler(transferService)
	adminHandler := handler.NewAdminHandler(cardService, adminService)
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis)

	authRequired := middleware.Auth(deps.Codec)

	// --- Public routes ---
	auth := e.Group("/api/v1/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- User routes ---
	cards := e.Group("/api/v1/user/cards", authRequired, middleware.RBAC(domain.RoleUser, domain.RoleAdmin))
	cards.GET("", cardHandler.List)
	cards.GET("/balance", cardHandler.AggregateBalance)
	cards.POST("/transfer", transferHandler.Transfer)
	cards.GET("/:cardId", cardHandler.Get)
	cards.GET("/:cardId/balance", cardHandler.Balance)
	cards.POST("/:cardId/block", cardHandler.Block)
	cards.POST("/:cardId/activate", cardHandler.Activate)
	cards.DELETE("/:cardId", cardHandler.Delete)

	// --- Admin routes ---
	admin := e.Group("/api/v1/admin", authRequired, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/cards", adminHandler.CreateCard)
	admin.GET("/cards", adminHandler.ListCards)
	admin.PATCH("/cards/balance", adminHandler.SetBalance)
	admin.GET("/cards/:cardId", adminHandler.GetCard)
	admin.POST("/cards/:cardId/block", adminHandler.BlockCard)
	admin.POST("/cards/:cardId/activate", adminHandler.ActivateCard)
	admin.DELETE("/cards/:cardId", adminHandler.DeleteCard)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:userId", adminHandler.GetUser)
	admin.PATCH("/users/:userId/status", adminHandler.SetUserStatus)
	admin.PATCH("/users/:userId/lock", adminHandler.SetUserLock)
	admin.PUT("/users/:userId", adminHandler.UpdateUser)
	admin.DELETE("/users/:userId", adminHandler.DeleteUser)

	return e
}
