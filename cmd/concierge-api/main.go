// README: Entry point; loads config, wires the concierge and serves the HTTP API until SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"concierge/internal/app"
	"concierge/internal/config"
	httptransport "concierge/internal/http"
	"concierge/internal/infra"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("wire concierge", zap.Error(err))
	}
	defer a.Close()

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Fatal("firebase init", zap.Error(err))
		}
	} else {
		logger.Warn("CONCIERGE_FIREBASE_PROJECT_ID not set, API is unauthenticated")
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Concierge:      a.Concierge,
		Verifier:       verifier,
		Logger:         logger.Named("http"),
		RequestTimeout: time.Duration(cfg.HTTP.RequestTimeoutSeconds) * time.Second,
		RatePerSecond:  cfg.HTTP.RateLimitPerSecond,
		RateBurst:      cfg.HTTP.RateLimitBurst,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
