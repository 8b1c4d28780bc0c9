package domain

import (
	"maps"
	"slices"
	"strings"
)

// Move is the right-hand side of a transition: the next state and the
// replacement for the stack top.
type Move struct {
	To   State `json:"to" yaml:"to" mapstructure:"to"`
	Push Push  `json:"push" yaml:"push" mapstructure:"push"`
}

// TransitionMap keys moves by (state, input symbol or Epsilon, stack top).
// The nested shape makes each (state, input, stack top) triple unique.
type TransitionMap map[State]map[Symbol]map[Symbol]Move

// Clone deep-copies the map.
func (t TransitionMap) Clone() TransitionMap {
	if t == nil {
		return nil
	}
	out := make(TransitionMap, len(t))
	for state, byInput := range t {
		inputs := make(map[Symbol]map[Symbol]Move, len(byInput))
		for input, byStack := range byInput {
			moves := make(map[Symbol]Move, len(byStack))
			for top, mv := range byStack {
				moves[top] = Move{To: mv.To, Push: slices.Clone(mv.Push)}
			}
			inputs[input] = moves
		}
		out[state] = inputs
	}
	return out
}

// Set adds or overwrites a single transition.
func (t TransitionMap) Set(from State, input, top Symbol, mv Move) {
	byInput, ok := t[from]
	if !ok {
		byInput = make(map[Symbol]map[Symbol]Move)
		t[from] = byInput
	}
	byStack, ok := byInput[input]
	if !ok {
		byStack = make(map[Symbol]Move)
		byInput[input] = byStack
	}
	byStack[top] = mv
}

// Rules flattens the map into rules sorted by state, input and stack top.
func (t TransitionMap) Rules() []Rule {
	var rules []Rule
	for _, from := range slices.Sorted(maps.Keys(t)) {
		byInput := t[from]
		for _, input := range slices.Sorted(maps.Keys(byInput)) {
			byStack := byInput[input]
			for _, top := range slices.Sorted(maps.Keys(byStack)) {
				mv := byStack[top]
				rules = append(rules, Rule{
					From:     from,
					Input:    input,
					StackTop: top,
					To:       mv.To,
					Push:     slices.Clone(mv.Push),
				})
			}
		}
	}
	return rules
}

// Rule is one flattened transition.
type Rule struct {
	From     State  `json:"from"`
	Input    Symbol `json:"input"`
	StackTop Symbol `json:"stack_top"`
	To       State  `json:"to"`
	Push     Push   `json:"push"`
}

// Label renders the rule the usual way: "a, X / PZ".
func (r Rule) Label() string {
	return r.Input.Display() + ", " + r.StackTop.Display() + " / " + r.Push.String()
}

// AcceptanceMode selects how a run decides acceptance.
type AcceptanceMode string

const (
	AcceptByFinalState AcceptanceMode = "final_state"
	AcceptByEmptyStack AcceptanceMode = "empty_stack"
	AcceptByBoth       AcceptanceMode = "both"
)

// Normalize maps the zero value to AcceptByBoth.
func (m AcceptanceMode) Normalize() AcceptanceMode {
	if m == "" {
		return AcceptByBoth
	}
	return m
}

// Valid reports whether m (after normalisation) is a known mode.
func (m AcceptanceMode) Valid() bool {
	switch m.Normalize() {
	case AcceptByFinalState, AcceptByEmptyStack, AcceptByBoth:
		return true
	}
	return false
}

// Definition is the construction record of an automaton.
type Definition struct {
	Name               string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description        string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	States             []State        `json:"states" yaml:"states" mapstructure:"states"`
	InputSymbols       []Symbol       `json:"input_symbols" yaml:"input_symbols" mapstructure:"input_symbols"`
	StackSymbols       []Symbol       `json:"stack_symbols" yaml:"stack_symbols" mapstructure:"stack_symbols"`
	Transitions        TransitionMap  `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	InitialState       State          `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
	InitialStackSymbol Symbol         `json:"initial_stack_symbol" yaml:"initial_stack_symbol" mapstructure:"initial_stack_symbol"`
	FinalStates        []State        `json:"final_states" yaml:"final_states" mapstructure:"final_states"`
	AcceptanceMode     AcceptanceMode `json:"acceptance_mode,omitempty" yaml:"acceptance_mode,omitempty" mapstructure:"acceptance_mode"`
}

// Clone deep-copies the definition.
func (d Definition) Clone() Definition {
	out := d
	out.States = slices.Clone(d.States)
	out.InputSymbols = slices.Clone(d.InputSymbols)
	out.StackSymbols = slices.Clone(d.StackSymbols)
	out.FinalStates = slices.Clone(d.FinalStates)
	out.Transitions = d.Transitions.Clone()
	return out
}

// Summary is a one-line description used in listings.
func (d Definition) Summary() string {
	parts := []string{
		"states=" + joinStates(d.States),
		"mode=" + string(d.AcceptanceMode.Normalize()),
	}
	return strings.Join(parts, " ")
}

func joinStates(states []State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return "{" + strings.Join(names, ",") + "}"
}
