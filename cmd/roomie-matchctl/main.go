package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "roomie-matchctl",
		Short: "Operate and inspect the roommate matching pipeline",
		Long: `roomie-matchctl is the operator CLI for the matching core.

It runs the Edge Calculator and Match Scheduler for a single pass,
inspects the live cache state, and prints the resolved configuration.`,
	}

	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")
	rootCmd.PersistentFlags().String("config", "", "path to config.yaml")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newRunCmd(),
		newInspectCmd(),
		newMCPServerCmd(),
		newBackupCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("roomie-matchctl version %s\n", version)
		},
	}
}
