package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roomie-match/matchcore/internal/backup"
	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/pathutil"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot or restore the live queue/edge cache",
	}

	var output string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a compressed snapshot of the current queue and edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if output == "" {
				dir, err := backup.DefaultBackupDir()
				if err != nil {
					return err
				}
				output = backup.GeneratePath(dir)
			}
			c := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
			defer c.Close()

			allowedDirs, err := pathutil.DefaultAllowedBackupDirs()
			if err != nil {
				return fmt.Errorf("resolve allowed backup directories: %w", err)
			}
			snap, err := backup.Create(cmd.Context(), c, output, time.Now(), allowedDirs...)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d queue entries, %d edges)\n", output, len(snap.Queue), len(snap.Edges))
			return nil
		},
	}
	createCmd.Flags().StringVar(&output, "output", "", "output path (default: ~/.roomie-match/backups/...)")
	cmd.AddCommand(createCmd)

	restoreCmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a snapshot into the live cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
			defer c.Close()

			allowedDirs, err := pathutil.DefaultAllowedBackupDirs()
			if err != nil {
				return fmt.Errorf("resolve allowed backup directories: %w", err)
			}
			result, err := backup.Restore(cmd.Context(), c, args[0], allowedDirs...)
			if err != nil {
				return err
			}
			fmt.Printf("restored %d queue entries, %d edges\n", result.QueueRestored, result.EdgesRestored)
			return nil
		},
	}
	cmd.AddCommand(restoreCmd)

	var keepCount int
	var maxAge string
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old backups, always keeping the newest non-empty one",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backup.DefaultBackupDir()
			if err != nil {
				return err
			}

			policies := []backup.RetentionPolicy{&backup.NonEmptyFloorPolicy{}}
			if keepCount > 0 {
				policies = append(policies, &backup.CountPolicy{MaxCount: keepCount})
			}
			if maxAge != "" {
				age, err := backup.ParseDuration(maxAge)
				if err != nil {
					return fmt.Errorf("parse --max-age: %w", err)
				}
				policies = append(policies, &backup.AgePolicy{MaxAge: age})
			}

			deleted, err := backup.ApplyRetention(dir, &backup.CompositePolicy{Policies: policies})
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d backups\n", len(deleted))
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&keepCount, "keep-count", 10, "keep at most this many backups (0 disables the count policy)")
	pruneCmd.Flags().StringVar(&maxAge, "max-age", "", "delete backups older than this (e.g. 30d, 2w, 720h); empty disables the age policy")
	cmd.AddCommand(pruneCmd)

	return cmd
}
