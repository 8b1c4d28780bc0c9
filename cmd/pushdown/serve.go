package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aretw0/pushdown/internal/cli"
	"github.com/aretw0/pushdown/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves every definition in --dir over a JSON API, with stepwise sessions
and Prometheus metrics on /metrics. Sessions are kept in Redis when --redis is
set, in --session-dir when given, and in memory otherwise. A 32-byte hex
--session-key (or PUSHDOWN_SESSION_KEY) encrypts sessions at rest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts cli.ServeOptions
		opts.Port, _ = cmd.Flags().GetInt("port")
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.RedisURL, _ = cmd.Flags().GetString("redis")
		opts.SessionTTL, _ = cmd.Flags().GetDuration("session-ttl")
		opts.SessionDir, _ = cmd.Flags().GetString("session-dir")
		opts.MaxSteps, _ = cmd.Flags().GetInt("max-steps")

		key, _ := cmd.Flags().GetString("session-key")
		if key == "" {
			key = os.Getenv("PUSHDOWN_SESSION_KEY")
		}
		if key != "" {
			raw, err := hex.DecodeString(key)
			if err != nil {
				return fmt.Errorf("session key must be hex encoded: %w", err)
			}
			opts.SessionKey = raw
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, opts, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("dir", ".", "Directory containing definition files")
	serveCmd.Flags().String("redis", "", "Redis URL for sessions and locks (e.g. redis://localhost:6379/0)")
	serveCmd.Flags().Duration("session-ttl", 0, "Expire idle sessions after this long (redis only; 0 = never)")
	serveCmd.Flags().String("session-dir", "", "Store sessions as JSON files in this directory")
	serveCmd.Flags().String("session-key", "", "Hex-encoded AES-256 key sealing stored sessions")
	serveCmd.Flags().Int("max-steps", 0, "Abort runs after this many transitions (0 = unlimited)")
}
