package validator

import (
	"errors"
	"maps"
	"slices"

	"github.com/aretw0/pushdown/pkg/domain"
)

// Validate runs every construction-time check on def: the definition-level
// checks, the per-transition symbol checks and the isolated-lambda rule.
// All problems are reported, joined in a stable order; nil means def is a
// well-formed deterministic automaton.
func Validate(def domain.Definition) error {
	errs := CheckDefinition(def)
	errs = append(errs, CheckTransitions(def)...)
	errs = append(errs, CheckDeterminism(def.Transitions)...)
	return errors.Join(errs...)
}

type alphabets struct {
	states map[domain.State]bool
	input  map[domain.Symbol]bool
	stack  map[domain.Symbol]bool
}

func newAlphabets(def domain.Definition) alphabets {
	a := alphabets{
		states: make(map[domain.State]bool, len(def.States)),
		input:  make(map[domain.Symbol]bool, len(def.InputSymbols)),
		stack:  make(map[domain.Symbol]bool, len(def.StackSymbols)),
	}
	for _, s := range def.States {
		a.states[s] = true
	}
	for _, s := range def.InputSymbols {
		a.input[s] = true
	}
	for _, s := range def.StackSymbols {
		a.stack[s] = true
	}
	return a
}

// CheckDefinition validates the parts of def that do not involve transitions:
// acceptance mode, alphabets, initial and final states.
func CheckDefinition(def domain.Definition) []error {
	var errs []error
	a := newAlphabets(def)

	if !def.AcceptanceMode.Valid() {
		errs = append(errs, &domain.InvalidAcceptanceModeError{Mode: def.AcceptanceMode})
	}

	for _, s := range def.InputSymbols {
		if !s.Valid() {
			errs = append(errs, &domain.InvalidSymbolError{Symbol: s, Alphabet: "input", Reason: "is not a single character"})
		}
	}
	for _, s := range def.StackSymbols {
		if !s.Valid() {
			errs = append(errs, &domain.InvalidSymbolError{Symbol: s, Alphabet: "stack", Reason: "is not a single character"})
		}
	}

	if !a.states[def.InitialState] {
		errs = append(errs, &domain.InvalidStateError{State: def.InitialState, Role: "initial"})
	}
	if !a.stack[def.InitialStackSymbol] {
		errs = append(errs, &domain.InvalidSymbolError{Symbol: def.InitialStackSymbol, Alphabet: "stack"})
	}
	for _, f := range def.FinalStates {
		if !a.states[f] {
			errs = append(errs, &domain.InvalidStateError{State: f, Role: "final"})
		}
	}

	return errs
}

// CheckTransitions validates every transition against the declared states and alphabets.
func CheckTransitions(def domain.Definition) []error {
	var errs []error
	a := newAlphabets(def)

	for _, r := range def.Transitions.Rules() {
		if !a.states[r.From] {
			errs = append(errs, &domain.InvalidStateError{State: r.From, Role: "source"})
		}
		if !r.Input.IsEpsilon() && !a.input[r.Input] {
			errs = append(errs, &domain.InvalidSymbolError{State: r.From, Symbol: r.Input, Alphabet: "input"})
		}
		if !a.stack[r.StackTop] {
			errs = append(errs, &domain.InvalidSymbolError{State: r.From, Symbol: r.StackTop, Alphabet: "stack"})
		}
		if !a.states[r.To] {
			errs = append(errs, &domain.InvalidStateError{State: r.To, Role: "target"})
		}
		for _, s := range r.Push {
			if !a.stack[s] {
				errs = append(errs, &domain.InvalidSymbolError{State: r.From, Symbol: s, Alphabet: "stack"})
			}
		}
	}

	return errs
}

// CheckDeterminism enforces the isolated-lambda rule: when a state has a
// lambda transition on stack top X, no other input symbol of that state may
// also define a transition on X. Lambda transitions never collide with each
// other because the stack top is part of their key.
func CheckDeterminism(transitions domain.TransitionMap) []error {
	var errs []error

	for _, state := range slices.Sorted(maps.Keys(transitions)) {
		byInput := transitions[state]
		lambda, ok := byInput[domain.Epsilon]
		if !ok {
			continue
		}
		for _, input := range slices.Sorted(maps.Keys(byInput)) {
			if input.IsEpsilon() {
				continue
			}
			for _, top := range slices.Sorted(maps.Keys(byInput[input])) {
				if _, clash := lambda[top]; clash {
					errs = append(errs, &domain.NondeterminismError{State: state, Input: input, StackTop: top})
				}
			}
		}
	}

	return errs
}

// Unreachable returns the declared states that cannot be reached from the
// initial state by following transitions, sorted. It ignores input and stack
// contents, so a state listed here is unreachable for every input.
func Unreachable(def domain.Definition) []domain.State {
	visited := make(map[domain.State]bool)
	queue := []domain.State{def.InitialState}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, byStack := range def.Transitions[current] {
			for _, mv := range byStack {
				if !visited[mv.To] {
					queue = append(queue, mv.To)
				}
			}
		}
	}

	var out []domain.State
	for _, s := range def.States {
		if !visited[s] {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
