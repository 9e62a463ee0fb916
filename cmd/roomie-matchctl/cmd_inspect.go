package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/store"
	"github.com/roomie-match/matchcore/internal/visualization"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read the live queue, edges, and match history",
	}
	cmd.AddCommand(newInspectQueueCmd(), newInspectEdgesCmd(), newInspectHistoryCmd(), newInspectGraphCmd())
	return cmd
}

func newInspectGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the live queue and edges as a graph (DOT or JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			c, _, err := connectCache(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			queueKeys, err := c.Keys(cmd.Context(), domain.QueuePrefix+"*")
			if err != nil {
				return err
			}
			queue, err := readEntries[domain.QueueEntry](cmd.Context(), c, queueKeys)
			if err != nil {
				return err
			}
			edgeKeys, err := c.Keys(cmd.Context(), domain.EdgePrefix+"*")
			if err != nil {
				return err
			}
			edges, err := readEntries[domain.Edge](cmd.Context(), c, edgeKeys)
			if err != nil {
				return err
			}

			if format == "json" {
				return json.NewEncoder(os.Stdout).Encode(visualization.RenderJSON(queue, edges))
			}
			fmt.Fprint(os.Stdout, visualization.RenderDOT(queue, edges))
			return nil
		},
	}
	cmd.Flags().String("format", "dot", "output format: dot or json")
	return cmd
}

func connectCache(cmd *cobra.Command) (*cache.RedisClient, *config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB), cfg, nil
}

func newInspectQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List every QueueEntry currently waiting",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectCache(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			keys, err := c.Keys(cmd.Context(), domain.QueuePrefix+"*")
			if err != nil {
				return err
			}
			entries, err := readEntries[domain.QueueEntry](cmd.Context(), c, keys)
			if err != nil {
				return err
			}
			return printJSONOrTable(cmd, entries, func(e domain.QueueEntry) string {
				return fmt.Sprintf("%-20s prop=%-8d priority=%-4d calculated=%t", e.UserID, e.PropertyID, e.Priority, e.EdgeCalculated)
			})
		},
	}
}

func newInspectEdgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edges",
		Short: "List every scored Edge currently cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectCache(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			keys, err := c.Keys(cmd.Context(), domain.EdgePrefix+"*")
			if err != nil {
				return err
			}
			edges, err := readEntries[domain.Edge](cmd.Context(), c, keys)
			if err != nil {
				return err
			}
			return printJSONOrTable(cmd, edges, func(e domain.Edge) string {
				a, b := e.Endpoints()
				return fmt.Sprintf("%-20s %-20s score=%.2f", a, b, e.Score)
			})
		},
	}
}

func newInspectHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List committed matches from the relational store",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			s, err := store.NewPostgresStore(cmd.Context(), cfg.Store.DSN)
			if err != nil {
				return fmt.Errorf("connect store: %w", err)
			}
			defer s.Close()

			rows, err := s.ListMatchHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSONOrTable(cmd, rows, func(r domain.MatchHistoryRow) string {
				return fmt.Sprintf("#%-6d %-20s %-20s score=%.2f matched_at=%s", r.MatchID, r.UserA, r.UserB, r.CompatibilityScore, r.MatchedAt.Format("2006-01-02T15:04:05Z07:00"))
			})
		},
	}
	cmd.Flags().Int("limit", 50, "maximum rows to return")
	return cmd
}

func readEntries[T any](ctx context.Context, c *cache.RedisClient, keys []string) ([]T, error) {
	values, err := c.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, fmt.Errorf("decode cache entry: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

func printJSONOrTable[T any](cmd *cobra.Command, items []T, line func(T) string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(items)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, line(item))
	}
	fmt.Fprintln(os.Stdout, strings.Join(lines, "\n"))
	return nil
}
