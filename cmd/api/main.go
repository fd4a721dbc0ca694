package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"equity-backtest/internal/api"
	"equity-backtest/internal/api/handlers"
	"equity-backtest/internal/config"
	"equity-backtest/internal/data"
	"equity-backtest/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env, foundDotenv := config.LoadServerEnv()

	logger, err := logging.New(env.LogLevel, env.Production())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if !foundDotenv {
		logger.Info("no .env file found, using process environment")
	}

	if env.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := data.Open(ctx, env.Data, logger)
	if err != nil {
		logger.Fatal("failed to open bar source", zap.String("source", env.Data.Source), zap.Error(err))
	}
	defer src.Close()
	go src.RunJanitor(ctx, env.Data.CacheTTL)
	logger.Info("bar source ready",
		zap.String("source", env.Data.Source),
		zap.Duration("cache_ttl", env.Data.CacheTTL))

	storeSize, _ := strconv.Atoi(os.Getenv("RUN_STORE_SIZE"))

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err != nil {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		staticDir = ""
	}

	router := api.NewRouter(api.Deps{
		Source:         src,
		SourceKind:     env.Data.Source,
		Store:          handlers.NewRunStore(storeSize),
		PresetDir:      os.Getenv("PRESET_DIR"),
		UniverseFile:   env.UniverseFile,
		AllowedOrigins: env.AllowedOrigins,
		StaticDir:      staticDir,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", env.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting API server", zap.String("addr", srv.Addr), zap.String("env", env.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
