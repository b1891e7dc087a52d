package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tasktracker/configs"
	"tasktracker/internal/api"
	"tasktracker/internal/config"
	"tasktracker/internal/service"
	"tasktracker/pkg/logger"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		log.Fatalf("failed to initialise loggers: %v", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("time", time.Now().Format(time.RFC3339)),
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.NewDependencies(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Failed to initialise dependencies", zap.Error(err))
		return
	}
	defer deps.Close()

	app, err := api.NewApp(api.Services{
		Auth:   service.NewAuthService(deps.Users, deps.Sessions),
		Tasks:  service.NewTaskService(deps.Tasks),
		Users:  service.NewUserService(deps.Users),
		Checks: deps.Checks(),
	}, api.Options{
		CookieSecure:     cfg.CookieSecure,
		SessionTTL:       deps.Sessions.TTL(),
		RateLimitMax:     cfg.RateLimitMax,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
	if err != nil {
		logger.ErrorLogger.Error("Failed to build application", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	logger.SystemLogger.Info("Application ready", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
