package runtime

import (
	"context"
	"fmt"
	"iter"

	"github.com/aretw0/pushdown/pkg/domain"
)

// Run is a lazy cursor over the configurations of one run.
//
// The first call to Next produces the initial configuration; every later call
// performs exactly one Advance. The cursor holds only the current
// configuration, so abandoning it early needs no cleanup.
//
//	run := engine.Start(ctx, "(())")
//	for run.Next() {
//		fmt.Println(run.Configuration())
//	}
//	if err := run.Err(); err != nil { ... }
type Run struct {
	ctx     context.Context
	engine  *Engine
	input   string
	current domain.Configuration
	started bool
	status  domain.RunStatus
	steps   int
	err     error
}

// Start returns a new cursor over the run of input. Runs are independent;
// starting twice with the same input yields identical sequences.
func (e *Engine) Start(ctx context.Context, input string) *Run {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Run{ctx: ctx, engine: e, input: input}
}

// Next advances the run and reports whether a new configuration is available.
// It returns false once the run accepted or failed; check Err afterwards.
func (r *Run) Next() bool {
	if !r.started {
		r.started = true
		r.current = r.engine.Initial(r.input)
		r.status = domain.StatusRunning
		r.engine.emitRunStart(r.ctx, r.input, r.current)
		return true
	}
	if r.status.Terminal() {
		return false
	}
	if err := r.ctx.Err(); err != nil {
		r.finish(domain.StatusRejected, err)
		return false
	}
	if limit := r.engine.stepLimit; limit > 0 && r.steps >= limit && r.engine.CanContinue(r.current) {
		r.finish(domain.StatusRejected, fmt.Errorf("%w: %d steps", domain.ErrStepLimitExceeded, limit))
		return false
	}

	from := r.current
	out, err := r.engine.Advance(from)
	if err != nil {
		r.finish(out.Status, err)
		return false
	}
	if !out.Moved {
		// Input exhausted with no lambda move left, and the last configuration accepts.
		r.finish(out.Status, nil)
		return false
	}

	r.steps++
	r.current = out.Configuration
	r.engine.emitStep(r.ctx, from, out, r.steps)
	if out.Status == domain.StatusAccepted {
		// Acceptance is decided; no further moves are taken.
		r.finish(domain.StatusAccepted, nil)
	}
	return true
}

func (r *Run) finish(status domain.RunStatus, err error) {
	r.status = status
	r.err = err
	r.engine.emitFinish(r.ctx, r.input, r.current, r.steps, err)
}

// Configuration returns the most recent configuration.
func (r *Run) Configuration() domain.Configuration { return r.current }

// Steps returns the number of transitions taken so far.
func (r *Run) Steps() int { return r.steps }

// Status returns running until the run ends, then accepted or rejected.
func (r *Run) Status() domain.RunStatus { return r.status }

// Accepted reports whether the run ended accepting.
func (r *Run) Accepted() bool { return r.status == domain.StatusAccepted }

// Err returns the error that ended the run, if any. A RejectionError means
// the input is not in the language.
func (r *Run) Err() error { return r.err }

// All adapts the cursor to a range-over-func sequence. Every configuration
// is yielded with a nil error; a run that ends without accepting yields a
// final pair holding the last configuration and the error.
func (r *Run) All() iter.Seq2[domain.Configuration, error] {
	return func(yield func(domain.Configuration, error) bool) {
		for r.Next() {
			if !yield(r.Configuration(), nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(r.Configuration(), err)
		}
	}
}

// Collect drains the run and returns every configuration it produced.
func (r *Run) Collect() ([]domain.Configuration, error) {
	var configs []domain.Configuration
	for r.Next() {
		configs = append(configs, r.Configuration())
	}
	return configs, r.Err()
}
