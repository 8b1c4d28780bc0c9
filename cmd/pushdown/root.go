package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pushdown/internal/cli"
	"github.com/aretw0/pushdown/internal/logging"
	"github.com/spf13/cobra"
)

// logger is configured from --log-level before any command runs.
var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "pushdown",
	Short: "Pushdown is a deterministic pushdown automaton engine",
	Long: `Pushdown loads deterministic pushdown automata from YAML or JSON files,
decides whether they accept input strings, traces their runs step by step,
and serves them over HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		l, err := cli.NewLogger(level)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Rejections were already reported one per line.
		if !errors.Is(err, cli.ErrRejectedInputs) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
}
