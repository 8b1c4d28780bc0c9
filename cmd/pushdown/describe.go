package main

import (
	"github.com/aretw0/pushdown/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Print the automaton's components and transition table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.LoadAutomaton(args[0], 0, logger)
		if err != nil {
			return err
		}
		cli.Describe(cmd.OutOrStdout(), a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
