package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/taskhub-be/internal/api"
	"github.com/isdelr/taskhub-be/internal/auth"
	"github.com/isdelr/taskhub-be/internal/config"
	"github.com/isdelr/taskhub-be/internal/database"
	"github.com/isdelr/taskhub-be/internal/logger"
	"github.com/isdelr/taskhub-be/internal/mail"
	"github.com/isdelr/taskhub-be/internal/monitoring"
	"github.com/isdelr/taskhub-be/internal/ratelimit"
	"github.com/isdelr/taskhub-be/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.Database.Type).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	hasher, err := auth.NewHasher(cfg.PasswordHasher, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure password hasher")
	}

	mailer, err := mail.New(context.Background(), cfg.Email)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Email.Provider).Msg("Failed to configure email provider")
	}

	// Rate limiting is optional and only enabled with a Redis address
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = ratelimit.New(rdb, "taskhub:ratelimit", cfg.Redis.RateLimit, cfg.Redis.RateWindow).
			TrustProxy(cfg.Redis.TrustProxy)
		log.Info().Str("addr", cfg.Redis.Addr).Int("limit", cfg.Redis.RateLimit).Dur("window", cfg.Redis.RateWindow).Msg("Rate limiting enabled")
	}

	// Set up services
	userService := services.NewUserService(db, hasher)
	taskService := services.NewTaskService(db)
	sessionService := services.NewSessionService(userService, hasher)
	passwordService := services.NewPasswordService(userService, mailer, hasher, cfg.Reset)

	// Set up and run the background token sweeper
	sweeper, err := monitoring.NewTokenSweeper(userService, cfg.Reset.SweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure reset token sweeper")
	}
	sweeper.Start()

	// Set up router
	router := api.NewRouter(api.Services{
		Users:     userService,
		Tasks:     taskService,
		Sessions:  sessionService,
		Passwords: passwordService,
	}, cfg.AllowedOrigins, limiter)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
