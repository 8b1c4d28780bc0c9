package pushdown

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Runner feeds one input per line to an automaton and writes a verdict per
// line. This allows for easy testing and integration with different
// frontends (CLI, pipes, files).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms a verdict line before it is written.
// This allows for terminal styling without coupling the core package.
type ContentRenderer func(Result) (string, error)

// Summary counts the verdicts of a Runner pass.
type Summary struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// NewRunner creates a Runner over the given streams.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run reads lines until EOF. Trailing carriage returns are dropped; every
// other character of a line is part of the input, and an empty line is the
// empty input.
func (r *Runner) Run(ctx context.Context, a *Automaton) (Summary, error) {
	var sum Summary
	if r.Input == nil {
		return sum, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return sum, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- %s: %s ---\n", a.Name(), a.def.Summary())
	}

	scanner := bufio.NewScanner(r.Input)
	// Lines are inputs of any length.
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		input := strings.TrimRight(scanner.Text(), "\r")
		res := a.Run(ctx, input)

		sum.Total++
		if res.Accepted {
			sum.Accepted++
		} else {
			sum.Rejected++
		}

		line := FormatVerdict(res)
		if r.Renderer != nil {
			if rendered, err := r.Renderer(res); err == nil {
				line = rendered
			}
		}
		fmt.Fprintln(r.Output, strings.TrimRight(line, "\n"))
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("input error: %w", err)
	}
	return sum, nil
}

// FormatVerdict renders a result as "<input>\taccepted" or
// "<input>\trejected: <reason>".
func FormatVerdict(res Result) string {
	if res.Accepted {
		return fmt.Sprintf("%q\taccepted", res.Input)
	}
	return fmt.Sprintf("%q\trejected: %s", res.Input, res.Reason())
}

// Evaluate runs every input concurrently over the shared automaton and
// returns the results in input order. A concurrency below 1 means one
// goroutine per input. Only cancellation of ctx makes it fail.
func (a *Automaton) Evaluate(ctx context.Context, inputs []string, concurrency int) ([]Result, error) {
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.Run(gctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}
