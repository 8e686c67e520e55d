// deadlinectl runs the deadline announcer by hand.
//
// Usage:
//
//	deadlinectl run --dry-run
//	deadlinectl run --now 2025-01-10 --sources アソビストア
//	deadlinectl preview -f entries.yaml --budget 500
//	deadlinectl version
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outputFmt string

	rootCmd := &cobra.Command{
		Use:   "deadlinectl",
		Short: "Announce upcoming deadlines to Discord",
		Long: `deadlinectl runs one announcement pass outside the scheduler,
or previews how a list of entries would be compacted into messages.

Configuration is read from the same environment variables as the worker
(ALERT_DAYS, MAX_DISPLAY, MESSAGE_BUDGET, DISCORD_WEBHOOK_URL, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, yaml")

	rootCmd.AddCommand(runCmd(&outputFmt))
	rootCmd.AddCommand(previewCmd(&outputFmt))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deadlinectl %s\n", version)
		},
	}
}
