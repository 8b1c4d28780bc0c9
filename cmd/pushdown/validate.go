package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/pushdown/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check definitions for unknown symbols, states and nondeterminism",
	Long:  `Loads each definition file and reports every problem found. Exits 1 if any file is invalid.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var failed []string
		for _, path := range args {
			a, err := cli.LoadAutomaton(path, 0, logger)
			if err != nil {
				fmt.Fprintf(out, "%s: invalid\n", path)
				for _, e := range unjoin(err) {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				failed = append(failed, path)
				continue
			}
			fmt.Fprintf(out, "%s: valid (%d transitions) ✅\n", path, len(a.Transitions()))
			if unreachable := a.Unreachable(); len(unreachable) > 0 {
				fmt.Fprintf(out, "  warning: unreachable states %v\n", unreachable)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d definitions are invalid", len(failed), len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// unjoin lists the errors joined under err, or err itself.
func unjoin(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			return joined.Unwrap()
		}
	}
	return []error{err}
}
