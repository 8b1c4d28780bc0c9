package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/presentation/tui"
)

// ErrRejectedInputs is returned by Execute when at least one input was not
// accepted, so the command can exit non-zero like grep.
var ErrRejectedInputs = errors.New("some inputs were rejected")

// RunOptions holds the settings of the run command.
type RunOptions struct {
	Inputs      []string
	Stdin       bool
	Trace       bool
	Concurrency int
	// Color enables terminal styling (glamour traces, coloured verdicts).
	Color bool
	// Quiet suppresses the header printed in --stdin mode.
	Quiet bool
}

// Execute runs every input and writes one verdict per input to out, or a
// full trace per input with Trace. With Stdin, inputs are read one per line
// from in.
func Execute(ctx context.Context, a *pushdown.Automaton, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Stdin {
		r := pushdown.NewRunner(in, out)
		r.Headless = opts.Quiet
		r.Renderer = tui.VerdictRenderer(opts.Color)
		sum, err := r.Run(ctx, a)
		if err != nil {
			return err
		}
		if !opts.Quiet {
			printSystemMessage(out, "%d inputs, %d accepted, %d rejected", sum.Total, sum.Accepted, sum.Rejected)
		}
		if sum.Rejected > 0 {
			return ErrRejectedInputs
		}
		return nil
	}

	results, err := a.Evaluate(ctx, opts.Inputs, opts.Concurrency)
	if err != nil {
		return err
	}

	render := tui.VerdictRenderer(opts.Color)
	markdown := tui.NewRenderer()
	rejected := 0
	for _, res := range results {
		if !res.Accepted {
			rejected++
		}
		if opts.Trace {
			fmt.Fprint(out, trace(res, opts.Color, markdown))
			continue
		}
		fmt.Fprintln(out, verdictLine(render, res))
	}
	if rejected > 0 {
		return ErrRejectedInputs
	}
	return nil
}

// verdictLine renders res, falling back to the plain verdict.
func verdictLine(render pushdown.ContentRenderer, res pushdown.Result) string {
	line, err := render(res)
	if err != nil {
		return pushdown.FormatVerdict(res)
	}
	return line
}

func trace(res pushdown.Result, color bool, markdown func(string) (string, error)) string {
	if !color {
		return tui.TracePlain(res)
	}
	rendered, err := markdown(tui.TraceMarkdown(res))
	if err != nil {
		return tui.TracePlain(res)
	}
	return rendered
}
