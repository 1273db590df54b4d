package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nanogram/backend/internal/handlers"
	"github.com/anonto42/nanogram/backend/internal/router"
	"github.com/anonto42/nanogram/backend/pkg/config"
	"github.com/anonto42/nanogram/backend/pkg/firebase"
	"github.com/anonto42/nanogram/backend/pkg/logger"
	"github.com/anonto42/nanogram/backend/pkg/metrics"
	"github.com/anonto42/nanogram/backend/pkg/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger.SetGlobal(zl)

	ctx := context.Background()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Firebase is optional; without credentials only local login is offered
	var firebaseAuth *auth.Client
	app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		zl.Info("firebase disabled")
	case err != nil:
		zl.Fatal("failed to initialize firebase", zap.Error(err))
	default:
		firebaseAuth = app.AuthClient
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(zl)

	config.SetupMiddleware(e, cfg, zl)

	err = router.SetupRoutes(ctx, e, router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.Database,
		Firebase: firebaseAuth,
		Logger:   zl,
	})
	if err != nil {
		zl.Fatal("failed to set up routes", zap.Error(err))
	}

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		zl.Info("metrics server starting", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.Start(":" + cfg.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown error", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown error", zap.Error(err))
	}
}
