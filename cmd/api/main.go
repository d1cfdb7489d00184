package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-tracker/internal/app"
	"order-tracker/internal/core/config"
	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/server"
	cataloghandler "order-tracker/internal/features/catalog/handler"
	orderhandler "order-tracker/internal/features/orders/handler"

	"go.uber.org/zap"
)

// @title Order Tracker API
// @version 1.0
// @description Order status lookup with carrier tracking, plus catalog administration.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	lookup := app.NewLookup(cfg)
	defer lookup.Close()

	if missing := cfg.Postgres.Missing(); len(missing) > 0 {
		l.Warn("Order store not configured", zap.Strings("missing", missing))
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := lookup.HealthCheck(pingCtx); err != nil {
			l.Warn("Order store health check failed", zap.Error(err))
		} else {
			l.Info("Order store connection verified")
		}
		cancel()
	}

	catalog := app.NewCatalog(ctx, cfg)
	defer catalog.Close()

	srv := server.New(cfg)

	orderhandler.NewLookupHandler(lookup.Service).Register(srv.App)
	cataloghandler.NewCatalogHandler(catalog.Service).Register(srv.App)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		l.Info("Shutting down server")
		if err := srv.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
