package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/tubededentifrice/twitter-clone/internal/adapters/api"
	"github.com/tubededentifrice/twitter-clone/internal/adapters/store"
	"github.com/tubededentifrice/twitter-clone/internal/adapters/web"
	"github.com/tubededentifrice/twitter-clone/internal/config"
	"github.com/tubededentifrice/twitter-clone/internal/session"
	"github.com/tubededentifrice/twitter-clone/internal/usecases"
	"github.com/tubededentifrice/twitter-clone/pkg/log"
	"github.com/tubededentifrice/twitter-clone/pkg/log/transporters"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Logging
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.Info
	}
	logger := log.New(level, transporters.NewStdout().WithFormat(transporters.ParseFormat(cfg.LogFormat)))
	log.SetDefault(logger)
	defer logger.Close()

	// Session survives restarts through the session file
	sessions, err := session.NewManager(session.NewFilePersister(cfg.SessionFile))
	if err != nil {
		logger.Fatal("failed to restore session", "file", cfg.SessionFile, "error", err)
		logger.Close()
		os.Exit(1)
	}
	if viewer := sessions.Viewer(); viewer != "" {
		logger.Info("session restored", "viewer", viewer)
	}

	// Initialize adapters
	client := api.New(api.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		RPS:         cfg.API.RPS,
		Burst:       cfg.API.Burst,
		MaxAttempts: cfg.API.MaxAttempts,
		BaseBackoff: cfg.API.BaseBackoff,
		Breaker: api.BreakerOptions{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
	}, sessions)
	tweetStore := store.NewTweetStore(cfg.StoreTTL)
	defer tweetStore.Close()

	// Initialize use cases
	handlers := web.NewHandlers(web.UseCases{
		Feed:    usecases.NewGetFeedUseCase(client, tweetStore),
		Tweet:   usecases.NewGetTweetUseCase(client, tweetStore, usecases.NewNavigator()),
		Post:    usecases.NewPostTweetUseCase(client, tweetStore),
		React:   usecases.NewReactToTweetUseCase(client, client, tweetStore),
		Profile: usecases.NewGetProfileUseCase(client, client, tweetStore),
		Follow:  usecases.NewFollowUseCase(client),
		Auth:    usecases.NewAuthUseCase(client, sessions, tweetStore),
	}, sessions, client)
	limiter := web.NewActionLimiter(cfg.ActionsPerMinute, time.Minute)
	defer limiter.Close()

	// Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "Chirp",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestIDToContextMiddleware())
	app.Use(web.ViewerToContextMiddleware(sessions))
	app.Use(web.RequestLoggerMiddleware())
	app.Use(web.MetricsMiddleware())

	web.SetupRoutes(app, handlers, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "port", cfg.Port, "api", cfg.API.BaseURL)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
