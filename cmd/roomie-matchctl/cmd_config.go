package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/roomie-match/matchcore/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved config (defaults + file + env), secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			redacted := redactedView(cfg)
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(redacted)
			}
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			return enc.Encode(redacted)
		},
	})

	return cmd
}

// redactedView mirrors Config's shape but substitutes each secret-bearing
// field's String() form so neither YAML nor JSON output ever leaks one.
func redactedView(cfg *config.Config) map[string]any {
	return map[string]any{
		"edge_calculator": cfg.EdgeCalculator,
		"scheduler":       cfg.Scheduler,
		"cache":           cfg.Cache.String(),
		"store":           cfg.Store.String(),
		"notifier":        cfg.Notifier.String(),
		"logging":         cfg.Logging,
		"metrics":         cfg.Metrics,
	}
}
