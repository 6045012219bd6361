package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feedscope/hermes-adapter/internal/api"
	"github.com/feedscope/hermes-adapter/internal/config"
	"github.com/feedscope/hermes-adapter/internal/feeds"
	"github.com/feedscope/hermes-adapter/internal/hermes"
	"github.com/feedscope/hermes-adapter/internal/history"
	"github.com/feedscope/hermes-adapter/internal/metrics"
	"github.com/feedscope/hermes-adapter/internal/rate"
	"github.com/feedscope/hermes-adapter/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [hermes-adapter]...")

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// --- Upstream clients ---
	hermesClient := hermes.NewClient(logger.L(), cfg.HermesBaseURL, rateMgr, httpClient)
	historyFetcher := history.NewFetcher(logger.L(), cfg.BenchmarksBaseURL, rateMgr, httpClient)

	// --- Resolution + aggregation ---
	directory := feeds.NewDirectory(logger.L(), hermesClient, cfg.DirectoryTTL)
	feedSvc := feeds.NewService(logger.L(), hermesClient, directory)

	// --- Metrics ---
	metrics.StartServer(fmt.Sprintf(":%d", cfg.MetricsPort))

	// --- HTTP API ---
	app := fiber.New()
	app.Use(api.RequestID(logger.L()))
	h := api.NewHandler(logger.L(), feedSvc, historyFetcher)
	api.RegisterRoutes(app, h)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("http server stopped", "error", err)
		}
	}()
	logg.Infow("http server listening", "port", cfg.Port)

	<-ctx.Done()
	logg.Info("shutting down...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logg.Warnw("shutdown incomplete", "error", err)
	}
}
