package runtime

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/pkg/domain"
)

// Engine steps configurations of one validated automaton.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	table          *Table
	name           string
	initialState   domain.State
	initialStack   domain.Symbol
	finals         map[domain.State]bool
	acceptanceMode domain.AcceptanceMode
	stepLimit      int
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger keeps the default no-op.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStepLimit bounds the number of transitions a single run may take.
// Zero means unbounded; a cycle of lambda moves then never ends.
func WithStepLimit(limit int) EngineOption {
	return func(e *Engine) {
		e.stepLimit = limit
	}
}

// NewEngine creates an engine for def. The definition must already be valid;
// the engine does not re-check it.
func NewEngine(def domain.Definition, opts ...EngineOption) *Engine {
	e := &Engine{
		table:          NewTable(def.Transitions),
		name:           def.Name,
		initialState:   def.InitialState,
		initialStack:   def.InitialStackSymbol,
		finals:         make(map[domain.State]bool, len(def.FinalStates)),
		acceptanceMode: def.AcceptanceMode.Normalize(),
		logger:         logging.NewNop(),
	}
	for _, f := range def.FinalStates {
		e.finals[f] = true
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table exposes the read-only transition table.
func (e *Engine) Table() *Table { return e.table }

// FinalStates returns the accepting states, sorted.
func (e *Engine) FinalStates() []domain.State {
	out := make([]domain.State, 0, len(e.finals))
	for f := range e.finals {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Initial returns the starting configuration for input.
func (e *Engine) Initial(input string) domain.Configuration {
	return domain.NewConfiguration(e.initialState, input, e.initialStack)
}

// Step resolves the single applicable transition at cfg and applies it.
//
// The symbol move keyed by the next input symbol is looked up first, then
// the lambda move. Validation guarantees that at most one exists; finding both
// is reported as a ConsistencyError. Finding neither is a RejectionError.
func (e *Engine) Step(cfg domain.Configuration) (domain.Configuration, error) {
	next, _, err := e.step(cfg)
	return next, err
}

func (e *Engine) step(cfg domain.Configuration) (next domain.Configuration, lambda bool, err error) {
	top, ok := cfg.Stack.Peek()
	symbol, rest, hasInput := domain.FirstSymbol(cfg.Remaining)
	if !ok {
		return cfg, false, &domain.RejectionError{
			Kind:          domain.NoTransition,
			Configuration: cfg,
			Unread:        symbol,
			HasUnread:     hasInput,
		}
	}

	var (
		symbolMove domain.Move
		hasSymbol  bool
	)
	if hasInput {
		symbolMove, hasSymbol = e.table.Lookup(cfg.State, symbol, top)
	}
	lambdaMove, hasLambda := e.table.Lookup(cfg.State, domain.Epsilon, top)

	var mv domain.Move
	switch {
	case hasSymbol && hasLambda:
		return cfg, false, &domain.ConsistencyError{Configuration: cfg, Symbol: symbol, StackTop: top}
	case hasSymbol:
		mv = symbolMove
	case hasLambda:
		mv = lambdaMove
		rest = cfg.Remaining
		lambda = true
	default:
		return cfg, false, &domain.RejectionError{
			Kind:          domain.NoTransition,
			Configuration: cfg,
			Unread:        symbol,
			HasUnread:     hasInput,
		}
	}

	stack, err := cfg.Stack.ReplaceTop(mv.Push.PushOrder()...)
	if err != nil {
		return cfg, false, err
	}

	return domain.Configuration{
		State:     mv.To,
		Remaining: rest,
		Stack:     stack,
	}, lambda, nil
}

// CanContinue reports whether the run loop keeps going at cfg: input is left,
// or a lambda move applies to the current (state, stack top).
func (e *Engine) CanContinue(cfg domain.Configuration) bool {
	if cfg.Remaining != "" {
		return true
	}
	top, ok := cfg.Stack.Peek()
	return ok && e.table.HasLambda(cfg.State, top)
}

// HasAccepted checks cfg against the acceptance mode. Input must be fully read.
func (e *Engine) HasAccepted(cfg domain.Configuration) bool {
	if cfg.Remaining != "" {
		return false
	}
	switch e.acceptanceMode {
	case domain.AcceptByFinalState:
		return e.finals[cfg.State]
	case domain.AcceptByEmptyStack:
		return cfg.Stack.IsEmpty()
	default:
		return e.finals[cfg.State] && cfg.Stack.IsEmpty()
	}
}

// Advance performs one bounded unit of work from cfg.
//
// While the loop condition holds (input left or a lambda move available) it
// takes one step; the outcome is accepted when the new configuration accepts
// and running otherwise. Once the condition fails, cfg itself is checked:
// accepted, or rejected with a non-accepting RejectionError.
func (e *Engine) Advance(cfg domain.Configuration) (domain.Outcome, error) {
	if !e.CanContinue(cfg) {
		if e.HasAccepted(cfg) {
			return domain.Outcome{Configuration: cfg, Status: domain.StatusAccepted}, nil
		}
		return domain.Outcome{Configuration: cfg, Status: domain.StatusRejected},
			&domain.RejectionError{Kind: domain.NonAccepting, Configuration: cfg}
	}

	next, lambda, err := e.step(cfg)
	if err != nil {
		return domain.Outcome{Configuration: cfg, Status: domain.StatusRejected}, err
	}

	out := domain.Outcome{Configuration: next, Moved: true, Lambda: lambda, Status: domain.StatusRunning}
	if e.HasAccepted(next) {
		out.Status = domain.StatusAccepted
	}
	return out, nil
}

func (e *Engine) emitRunStart(ctx context.Context, input string, cfg domain.Configuration) {
	if e.hooks.OnRunStart == nil {
		return
	}
	e.hooks.OnRunStart(ctx, &domain.RunEvent{
		EventBase:     domain.NewEvent(domain.EventRunStart, e.name),
		Input:         input,
		Configuration: cfg,
	})
}

func (e *Engine) emitStep(ctx context.Context, from domain.Configuration, out domain.Outcome, step int) {
	// Rendering a configuration walks its input and stack.
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logger.DebugContext(ctx, "step",
			"automaton", e.name,
			"step", step,
			"from", from.String(),
			"to", out.Configuration.String(),
			"lambda", out.Lambda,
		)
	}
	if e.hooks.OnStep == nil {
		return
	}
	e.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase: domain.NewEvent(domain.EventStep, e.name),
		From:      from,
		To:        out.Configuration,
		Lambda:    out.Lambda,
		Step:      step,
	})
}

func (e *Engine) emitFinish(ctx context.Context, input string, cfg domain.Configuration, steps int, err error) {
	typ := domain.EventAccept
	hook := e.hooks.OnAccept
	if err != nil {
		typ = domain.EventReject
		hook = e.hooks.OnReject
		e.logger.Debug("run rejected", "automaton", e.name, "steps", steps, "err", err)
	} else {
		e.logger.Debug("run accepted", "automaton", e.name, "steps", steps)
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.RunEvent{
		EventBase:     domain.NewEvent(typ, e.name),
		Input:         input,
		Configuration: cfg,
		Steps:         steps,
		Err:           err,
	})
}
