package pushdown

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/internal/runtime"
	"github.com/aretw0/pushdown/internal/validator"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	"github.com/aretw0/pushdown/pkg/domain"
)

// Run is the lazy cursor returned by ReadInputStepwise.
type Run = runtime.Run

// Automaton is a validated deterministic pushdown automaton.
// It is read-only after New and safe for concurrent runs.
type Automaton struct {
	def       domain.Definition
	runtime   *runtime.Engine
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	stepLimit int
}

// Option defines a functional option for configuring the Automaton.
type Option func(*Automaton)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Automaton) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the automaton.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automaton) {
		a.logger = logger
	}
}

// WithStepLimit bounds the number of transitions of a single run.
// Zero (the default) leaves runs unbounded.
func WithStepLimit(limit int) Option {
	return func(a *Automaton) {
		a.stepLimit = limit
	}
}

// New validates def and builds an automaton over a private copy of it.
// Every problem found is reported; no automaton is returned on failure.
func New(def domain.Definition, opts ...Option) (*Automaton, error) {
	a := &Automaton{def: def.Clone()}
	a.def.AcceptanceMode = a.def.AcceptanceMode.Normalize()

	for _, opt := range opts {
		opt(a)
	}

	if err := validator.Validate(a.def); err != nil {
		return nil, err
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.def.Name != "" {
		a.logger = a.logger.With("automaton", a.def.Name)
	}

	a.runtime = runtime.NewEngine(a.def,
		runtime.WithLifecycleHooks(a.hooks),
		runtime.WithLogger(a.logger),
		runtime.WithStepLimit(a.stepLimit),
	)
	return a, nil
}

// Load decodes a YAML or JSON definition file and builds the automaton.
func Load(path string, opts ...Option) (*Automaton, error) {
	def, err := file.ReadDefinition(path)
	if err != nil {
		return nil, err
	}
	a, err := New(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton %s: %w", path, err)
	}
	return a, nil
}

// Validate re-runs the construction checks on the owned definition.
// It returns nil for any automaton obtained from New.
func (a *Automaton) Validate() error {
	return validator.Validate(a.def)
}

// Accepts reports whether input is in the language of the automaton.
//
// A rejection is the expected negative answer. Any other failure (a step
// limit, an inconsistency) also yields false and is logged.
func (a *Automaton) Accepts(input string) bool {
	run := a.ReadInputStepwise(context.Background(), input)
	for run.Next() {
	}
	err := run.Err()
	if err != nil && !errors.Is(err, domain.ErrRejected) {
		a.logger.Warn("run aborted", "input", input, "err", err)
	}
	return err == nil && run.Accepted()
}

// ReadInputStepwise returns a lazy cursor over the configurations of the run.
// The first configuration is the initial one. A rejection surfaces from Err
// once Next returns false.
func (a *Automaton) ReadInputStepwise(ctx context.Context, input string) *Run {
	return a.runtime.Start(ctx, input)
}

// Steps is ReadInputStepwise as a range-over-func sequence. A run that does
// not accept ends with a pair carrying the last configuration and the error.
func (a *Automaton) Steps(ctx context.Context, input string) iter.Seq2[domain.Configuration, error] {
	return a.ReadInputStepwise(ctx, input).All()
}

// Result is a fully drained run.
type Result struct {
	Input          string                 `json:"input"`
	Configurations []domain.Configuration `json:"configurations"`
	Accepted       bool                   `json:"accepted"`
	Err            error                  `json:"-"`
}

// Reason returns the error text of a failed run, or "".
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Run drains a run of input and records every configuration.
func (a *Automaton) Run(ctx context.Context, input string) Result {
	run := a.ReadInputStepwise(ctx, input)
	configs, err := run.Collect()
	return Result{
		Input:          input,
		Configurations: configs,
		Accepted:       err == nil && run.Accepted(),
		Err:            err,
	}
}

// InputPath pairs consecutive configurations of the run: each element holds
// the configuration before and after one transition.
func (a *Automaton) InputPath(ctx context.Context, input string) ([][2]domain.Configuration, bool) {
	res := a.Run(ctx, input)
	path := make([][2]domain.Configuration, 0, max(len(res.Configurations)-1, 0))
	for i := 1; i < len(res.Configurations); i++ {
		path = append(path, [2]domain.Configuration{res.Configurations[i-1], res.Configurations[i]})
	}
	return path, res.Accepted
}

// InitialConfiguration returns the configuration a run of input starts from.
func (a *Automaton) InitialConfiguration(input string) domain.Configuration {
	return a.runtime.Initial(input)
}

// Advance performs one unit of work from cfg. Collaborators that persist
// configurations between calls (sessions) drive runs through it.
func (a *Automaton) Advance(cfg domain.Configuration) (domain.Outcome, error) {
	return a.runtime.Advance(cfg)
}

// Transitions lists every transition in a stable order.
func (a *Automaton) Transitions() []domain.Rule {
	return a.runtime.Table().Rules()
}

// Definition returns a copy of the construction record.
func (a *Automaton) Definition() domain.Definition {
	return a.def.Clone()
}

// Name returns the automaton's name, possibly empty.
func (a *Automaton) Name() string { return a.def.Name }

// States returns the declared states.
func (a *Automaton) States() []domain.State { return slices.Clone(a.def.States) }

// InputSymbols returns the input alphabet.
func (a *Automaton) InputSymbols() []domain.Symbol { return slices.Clone(a.def.InputSymbols) }

// StackSymbols returns the stack alphabet.
func (a *Automaton) StackSymbols() []domain.Symbol { return slices.Clone(a.def.StackSymbols) }

// InitialState returns the start state.
func (a *Automaton) InitialState() domain.State { return a.def.InitialState }

// InitialStackSymbol returns the symbol the stack starts with.
func (a *Automaton) InitialStackSymbol() domain.Symbol { return a.def.InitialStackSymbol }

// FinalStates returns the accepting states, sorted.
func (a *Automaton) FinalStates() []domain.State { return a.runtime.FinalStates() }

// AcceptanceMode returns the normalised acceptance mode.
func (a *Automaton) AcceptanceMode() domain.AcceptanceMode { return a.def.AcceptanceMode }

// Unreachable lists declared states no transition path reaches.
func (a *Automaton) Unreachable() []domain.State {
	return validator.Unreachable(a.def)
}
