// Command main is the entry point for the Sonance backend server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sonance/internal/alerts"
	"sonance/internal/cache"
	"sonance/internal/config"
	"sonance/internal/database"
	"sonance/internal/middleware"
	"sonance/internal/observability"
	"sonance/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	slog.SetDefault(middleware.Logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	middleware.InitMiddleware(cfg)

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName:    "sonance-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		fatal("Failed to initialize tracing", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database", err)
	}

	rdb, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		if cfg.PushQueue == config.QueueRedis {
			fatal("Redis is required for the push queue", err)
		}
		slog.Warn("Redis unavailable, realtime publishing disabled", slog.String("error", err.Error()))
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb, alerts.LogSender{})
	if err != nil {
		fatal("Failed to create server", err)
	}
	if err := srv.StartBackground(); err != nil {
		fatal("Failed to start background workers", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "Sonance API",
		BodyLimit: 1 * 1024 * 1024,
	})
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			slog.Error("Server shutdown error", slog.String("error", err.Error()))
		}
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Background shutdown error", slog.String("error", err.Error()))
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("Tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.Info("Server starting", slog.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal("Server stopped", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
