package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/edgecalc"
	"github.com/roomie-match/matchcore/internal/logging"
	"github.com/roomie-match/matchcore/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	once := flag.Bool("once", false, "run a single tick and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "edge-calculator: config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "edge-calculator: invalid config:", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, os.Stdout)
	eventLog := logging.NewEventLogger(cfg.Logging.EventDir, "edge-log")
	defer eventLog.Close()

	redisClient := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsProvider, err := metrics.Setup(ctx, cfg.Metrics)
	if err != nil {
		logger.Error("metrics setup failed", "error", err)
		os.Exit(1)
	}
	defer metricsProvider.Shutdown(context.Background())
	recorder, err := metrics.NewRecorder(metricsProvider.Meter("roomie-match/edgecalc"))
	if err != nil {
		logger.Error("metrics recorder failed", "error", err)
		os.Exit(1)
	}

	calc := edgecalc.NewCalculator(redisClient, edgecalc.HardFilterPolicy(cfg.EdgeCalculator.HardFilterPolicy), logger, eventLog, cfg.EdgeCalculator.MaxSkipStreak).
		WithMetrics(recorder)

	if *once {
		if err := calc.Tick(ctx); err != nil {
			logger.Error("tick failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("edge calculator starting", "poll_interval", cfg.EdgeCalculator.PollInterval, "policy", cfg.EdgeCalculator.HardFilterPolicy)
	if err := calc.Run(ctx, cfg.EdgeCalculator.PollInterval); err != nil && err != context.Canceled {
		logger.Error("edge calculator exited", "error", err)
		os.Exit(1)
	}
}
