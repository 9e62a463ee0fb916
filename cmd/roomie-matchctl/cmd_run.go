package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/spf13/cobra"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/edgecalc"
	"github.com/roomie-match/matchcore/internal/logging"
	"github.com/roomie-match/matchcore/internal/notify"
	"github.com/roomie-match/matchcore/internal/ratelimit"
	"github.com/roomie-match/matchcore/internal/scheduler"
	"github.com/roomie-match/matchcore/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one pass of a pipeline stage out-of-band",
	}
	cmd.AddCommand(newRunEdgeCalculatorCmd(), newRunSchedulerCmd())
	return cmd
}

func newRunEdgeCalculatorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edge-calculator",
		Short: "Run a single Edge Calculator sweep of the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stdout)

			c := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
			defer c.Close()

			calc := edgecalc.NewCalculator(c, edgecalc.HardFilterPolicy(cfg.EdgeCalculator.HardFilterPolicy), logger, nil, cfg.EdgeCalculator.MaxSkipStreak)
			return calc.Tick(cmd.Context())
		},
	}
}

func newRunSchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run a single Match Scheduler cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stdout)
			ctx := cmd.Context()

			c := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
			defer c.Close()

			s, err := store.NewPostgresStore(ctx, cfg.Store.DSN)
			if err != nil {
				return fmt.Errorf("connect store: %w", err)
			}
			defer s.Close()

			notifier, err := buildNotifierForCLI(ctx, cfg, logger)
			if err != nil {
				return err
			}

			cy := &scheduler.Cycle{
				Cache:    c,
				Store:    s,
				Notifier: notifier,
				Config: scheduler.Config{
					MatchThreshold:    cfg.Scheduler.MatchThreshold,
					PriorityBypass:    cfg.Scheduler.PriorityBypassEnabled,
					PriorityBypassMin: cfg.Scheduler.PriorityBypass,
					ExpireAfter:       cfg.Scheduler.ExpireAfter,
					ChunkSize:         cfg.Scheduler.SnapshotChunkSize,
				},
			}
			result, err := cy.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("snapshotted=%d candidates=%d matched=%d expired=%d aged=%d orphans_gc=%d\n",
				result.Snapshotted, result.Candidates, result.Matched, result.Expired, result.Aged, result.OrphansGCed)
			return nil
		},
	}
}

func buildNotifierForCLI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
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
	limiters := ratelimit.NewNotifierLimiters(cfg.Notifier.RatePerSecond, cfg.Notifier.WorkerCount*2)
	return notify.NewSESNotifier(sesClient, directory, pool, limiters, cfg.Notifier.FromAddress, cfg.Notifier.FrontendURL, logger), nil
}
