package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/finwave/cards-api/internal/api"
	"github.com/finwave/cards-api/internal/infrastructure/db/mongo"
	"github.com/finwave/cards-api/internal/infrastructure/db/redis"
	"github.com/finwave/cards-api/internal/infrastructure/sweep"
	"github.com/finwave/cards-api/internal/pkg/config"
	"github.com/finwave/cards-api/internal/security/cardcrypto"
	"github.com/finwave/cards-api/internal/security/token"
	"github.com/finwave/cards-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	userRepo := mongo.NewUserRepository(db)
	cardRepo := mongo.NewCardRepository(db)
	tokenRepo := mongo.NewTokenRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"users":  userRepo.EnsureIndexes,
		"cards":  cardRepo.EnsureIndexes,
		"tokens": tokenRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	encryptor := cardcrypto.NewEncryptor(cfg.Cards.EncPassword, cfg.Cards.EncSalt)

	sweeper := sweep.NewSweeper(cardRepo, cfg.Sweep.Interval, log)
	sweeper.Start(ctx)

	e := api.NewRouter(api.RouterDeps{
		DB:        db,
		Redis:     rdb,
		Codec:     codec,
		Encryptor: encryptor,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
