package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/config"
	"github.com/roomie-match/matchcore/internal/mcp"
	"github.com/roomie-match/matchcore/internal/store"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve read-only queue/edges/history tools over MCP (stdio)",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			c := cache.NewRedisClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
			defer c.Close()

			s, err := store.NewPostgresStore(cmd.Context(), cfg.Store.DSN)
			if err != nil {
				return fmt.Errorf("connect store: %w", err)
			}
			defer s.Close()

			srv, err := mcp.NewServer(&mcp.Config{Name: "roomie-matchctl", Version: version}, c, s)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
