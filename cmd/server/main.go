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

	"go.uber.org/zap"

	authservice "securetask/backend/internal/auth/service"
	"securetask/backend/internal/config"
	"securetask/backend/internal/db"
	"securetask/backend/internal/security"
	"securetask/backend/internal/server"
	"securetask/backend/internal/server/handler"
	"securetask/backend/internal/server/middleware"
	taskrepo "securetask/backend/internal/task/repository"
	taskservice "securetask/backend/internal/task/service"
	"securetask/backend/internal/telemetry/otel"
	tokenrepo "securetask/backend/internal/token/repository"
	tokenservice "securetask/backend/internal/token/service"
	userrepo "securetask/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "securetask")
	if err != nil {
		logger.Fatal("telemetry", zap.Error(err))
	}
	providers.SetGlobal()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	tokens, err := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL())
	if err != nil {
		logger.Fatal("token provider", zap.Error(err))
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(database)
	refreshTokens := tokenrepo.NewPostgresRepository(database)
	tasks := taskrepo.NewPostgresRepository(database)

	ledger := tokenservice.NewLedger(users, refreshTokens, cfg.RefreshTokenTTL())
	auth := authservice.NewAuthService(users, ledger, hasher, tokens)
	taskSvc := taskservice.NewTaskService(tasks, users)

	router := server.NewRouter(
		logger,
		handler.NewAuthHandler(auth, logger),
		handler.NewTaskHandler(taskSvc, logger),
		middleware.NewAuthenticator(tokens, users),
		middleware.NewRateLimiter(cfg.RateLimitPerMinute),
	)
	srv := server.NewHTTPServer(cfg.HTTPAddr, router)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
