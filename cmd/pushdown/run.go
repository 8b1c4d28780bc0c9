package main

import (
	"os"

	"github.com/aretw0/pushdown/internal/cli"
	"github.com/aretw0/pushdown/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file> [input...]",
	Short: "Decide whether the automaton accepts each input",
	Long: `Loads the automaton from <file> and prints one verdict per input.
With --stdin, inputs are read one per line. With --trace, every configuration
of each run is printed. Exits 1 when any input is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		stdin, _ := cmd.Flags().GetBool("stdin")
		trace, _ := cmd.Flags().GetBool("trace")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		quiet, _ := cmd.Flags().GetBool("quiet")

		a, err := cli.LoadAutomaton(args[0], maxSteps, logger)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.Execute(ctx, a, cli.RunOptions{
			Inputs:      args[1:],
			Stdin:       stdin,
			Trace:       trace,
			Concurrency: concurrency,
			Color:       tui.IsTerminal(os.Stdout),
			Quiet:       quiet,
		}, os.Stdin, cmd.OutOrStdout())
		if ctx.Signal() != nil && cli.IsInterrupted(err) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("stdin", false, "Read inputs from standard input, one per line")
	runCmd.Flags().Bool("trace", false, "Print every configuration of each run")
	runCmd.Flags().Int("max-steps", 0, "Abort a run after this many transitions (0 = unlimited)")
	runCmd.Flags().Int("concurrency", 0, "Inputs evaluated in parallel (0 = all at once)")
	runCmd.Flags().BoolP("quiet", "q", false, "Omit the header and summary in --stdin mode")
}
