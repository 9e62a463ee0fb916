package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/logging"
	"github.com/roomie-match/matchcore/internal/metrics"
	"github.com/roomie-match/matchcore/internal/notify"
	"github.com/roomie-match/matchcore/internal/ratelimit"
	"github.com/roomie-match/matchcore/internal/scheduler"
	"github.com/roomie-match/matchcore/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "match-scheduler: config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "match-scheduler: invalid config:", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, os.Stdout)
	eventLog := logging.NewEventLogger(cfg.Logging.EventDir, "cycle-log")
	defer eventLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	defer redisClient.Close()

	pgStore, err := store.NewPostgresStore(ctx, cfg.Store.DSN)
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	metricsProvider, err := metrics.Setup(ctx, cfg.Metrics)
	if err != nil {
		logger.Error("metrics setup failed", "error", err)
		os.Exit(1)
	}
	defer metricsProvider.Shutdown(context.Background())
	recorder, err := metrics.NewRecorder(metricsProvider.Meter("roomie-match/scheduler"))
	if err != nil {
		logger.Error("metrics recorder failed", "error", err)
		os.Exit(1)
	}

	notifier, err := buildNotifier(ctx, cfg, recorder)
	if err != nil {
		logger.Error("failed to build notifier", "error", err)
		os.Exit(1)
	}

	schedCfg := scheduler.Config{
		MatchThreshold:    cfg.Scheduler.MatchThreshold,
		PriorityBypass:    cfg.Scheduler.PriorityBypassEnabled,
		PriorityBypassMin: cfg.Scheduler.PriorityBypass,
		ExpireAfter:       cfg.Scheduler.ExpireAfter,
		ChunkSize:         cfg.Scheduler.SnapshotChunkSize,
	}

	sched := scheduler.New(redisClient, pgStore, notifier, schedCfg, cfg.Scheduler.LockKey,
		int(cfg.Scheduler.LockExpire.Seconds()), cfg.Scheduler.Interval, logger, eventLog).
		WithMetrics(recorder)

	if *once {
		result, err := sched.Cycle.Run(ctx)
		if err != nil {
			logger.Error("cycle failed", "error", err)
			os.Exit(1)
		}
		logger.Info("cycle complete", "matched", result.Matched, "expired", result.Expired, "aged", result.Aged)
		return
	}

	logger.Info("match scheduler starting", "interval", cfg.Scheduler.Interval)
	if err := sched.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("match scheduler exited", "error", err)
		os.Exit(1)
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) (notify.Notifier, error) {
	logger := logging.NewLogger(cfg.Logging.Level, os.Stdout).With("component", "notifier")

	if !cfg.Notifier.Enabled {
		return notify.NewNoopNotifier(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifier.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	sesClient := ses.NewFromConfig(awsCfg)

	directory := notify.NewHTTPDirectory(os.Getenv("ACCOUNT_SERVICE_URL"), nil)
	pool := notify.NewPool(cfg.Notifier.WorkerCount, cfg.Notifier.QueueCapacity, logger)
	pool.OnDrop(func() { recorder.NotifyDropped(context.Background()) })
	limiters := ratelimit.NewNotifierLimiters(cfg.Notifier.RatePerSecond, cfg.Notifier.WorkerCount*2)

	return notify.NewSESNotifier(sesClient, directory, pool, limiters, cfg.Notifier.FromAddress, cfg.Notifier.FrontendURL, logger), nil
}
