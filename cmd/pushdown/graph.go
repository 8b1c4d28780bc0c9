package main

import (
	"context"
	"fmt"

	"github.com/aretw0/pushdown/internal/cli"
	"github.com/aretw0/pushdown/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the automaton as a Mermaid state diagram",
	Long: `Outputs a Mermaid diagram (stateDiagram-v2) of the automaton. With --input,
the states visited by that run are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.LoadAutomaton(args[0], 0, logger)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			res := a.Run(context.Background(), input)
			overlay = graph.OverlayFromRun(res.Configurations, &res.Accepted)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(a.Definition(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("input", "", "Highlight the run of this input")
}
