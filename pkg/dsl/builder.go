package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	def   domain.Definition
	rules []*RuleBuilder
}

// New creates a new definition builder.
func New(name string) *Builder {
	return &Builder{
		def: domain.Definition{Name: name},
	}
}

// Describe sets the free-form description.
func (b *Builder) Describe(text string) *Builder {
	b.def.Description = text
	return b
}

// States declares states. Repeated calls append.
func (b *Builder) States(states ...domain.State) *Builder {
	b.def.States = append(b.def.States, states...)
	return b
}

// InputSymbols declares the input alphabet. Each character of each argument
// is one symbol, so InputSymbols("()") and InputSymbols("(", ")") agree.
func (b *Builder) InputSymbols(symbols ...string) *Builder {
	for _, s := range symbols {
		b.def.InputSymbols = append(b.def.InputSymbols, domain.SplitSymbols(s)...)
	}
	return b
}

// StackSymbols declares the stack alphabet, one symbol per character.
func (b *Builder) StackSymbols(symbols ...string) *Builder {
	for _, s := range symbols {
		b.def.StackSymbols = append(b.def.StackSymbols, domain.SplitSymbols(s)...)
	}
	return b
}

// Initial sets the initial state and initial stack symbol.
func (b *Builder) Initial(state domain.State, stackSymbol domain.Symbol) *Builder {
	b.def.InitialState = state
	b.def.InitialStackSymbol = stackSymbol
	return b
}

// Final marks accepting states.
func (b *Builder) Final(states ...domain.State) *Builder {
	b.def.FinalStates = append(b.def.FinalStates, states...)
	return b
}

// Mode sets the acceptance mode.
func (b *Builder) Mode(mode domain.AcceptanceMode) *Builder {
	b.def.AcceptanceMode = mode
	return b
}

// On starts a transition reading input with stackTop on top of the stack.
func (b *Builder) On(from domain.State, input, stackTop domain.Symbol) *RuleBuilder {
	rb := &RuleBuilder{
		builder:  b,
		from:     from,
		input:    input,
		stackTop: stackTop,
	}
	b.rules = append(b.rules, rb)
	return rb
}

// Lambda starts a transition that reads no input.
func (b *Builder) Lambda(from domain.State, stackTop domain.Symbol) *RuleBuilder {
	return b.On(from, domain.Epsilon, stackTop)
}

// Build assembles the definition. It fails when a rule has no target or when
// two rules share (state, input, stack top); everything else is left to
// validation.
func (b *Builder) Build() (domain.Definition, error) {
	def := b.def.Clone()
	def.Transitions = domain.TransitionMap{}

	var errs []error
	for _, rb := range b.rules {
		if rb.to == "" {
			errs = append(errs, fmt.Errorf("transition %s has no target state", rb))
			continue
		}
		if _, dup := def.Transitions[rb.from][rb.input][rb.stackTop]; dup {
			errs = append(errs, fmt.Errorf("transition %s is defined twice", rb))
			continue
		}
		def.Transitions.Set(rb.from, rb.input, rb.stackTop, domain.Move{To: rb.to, Push: rb.push})
	}
	if err := errors.Join(errs...); err != nil {
		return domain.Definition{}, err
	}
	return def, nil
}

// Compile builds and validates the definition into an automaton.
func (b *Builder) Compile(opts ...pushdown.Option) (*pushdown.Automaton, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	return pushdown.New(def, opts...)
}

// RuleBuilder provides a fluent API for configuring a transition.
type RuleBuilder struct {
	builder  *Builder
	from     domain.State
	input    domain.Symbol
	stackTop domain.Symbol
	to       domain.State
	push     domain.Push
}

// Go sets the target state. Without Push the stack top is popped.
func (r *RuleBuilder) Go(to domain.State) *RuleBuilder {
	r.to = to
	return r
}

// Push sets the replacement for the stack top, written top first.
func (r *RuleBuilder) Push(symbols string) *RuleBuilder {
	r.push = domain.ParsePush(symbols)
	return r
}

// Keep replaces the stack top with itself.
func (r *RuleBuilder) Keep() *RuleBuilder {
	r.push = domain.Push{r.stackTop}
	return r
}

// On starts the next transition.
func (r *RuleBuilder) On(from domain.State, input, stackTop domain.Symbol) *RuleBuilder {
	return r.builder.On(from, input, stackTop)
}

// Lambda starts the next transition, reading no input.
func (r *RuleBuilder) Lambda(from domain.State, stackTop domain.Symbol) *RuleBuilder {
	return r.builder.Lambda(from, stackTop)
}

// Done returns to the definition builder.
func (r *RuleBuilder) Done() *Builder {
	return r.builder
}

func (r *RuleBuilder) String() string {
	return fmt.Sprintf("(%s, %s, %s)", r.from, r.input.Display(), r.stackTop.Display())
}
