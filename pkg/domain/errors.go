package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyStack is returned when the top of an empty stack is requested.
var ErrEmptyStack = errors.New("stack is empty")

// ErrInvalidSymbol matches every InvalidSymbolError.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ErrInvalidState matches every InvalidStateError.
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidAcceptanceMode matches every InvalidAcceptanceModeError.
var ErrInvalidAcceptanceMode = errors.New("invalid acceptance mode")

// ErrNondeterministic matches every NondeterminismError.
var ErrNondeterministic = errors.New("automaton is not deterministic")

// ErrRejected matches every RejectionError.
var ErrRejected = errors.New("input rejected")

// ErrInconsistent matches every ConsistencyError.
var ErrInconsistent = errors.New("internal consistency violation")

// ErrStepLimitExceeded is returned when a run takes more steps than allowed.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionFinished is returned when stepping a session that already accepted or rejected.
var ErrSessionFinished = errors.New("session already finished")

// ErrAutomatonNotFound is returned when a named definition does not exist.
var ErrAutomatonNotFound = errors.New("automaton not found")

// InvalidSymbolError reports a symbol outside its declared alphabet, or an
// alphabet entry that is not a single character.
type InvalidSymbolError struct {
	State    State  // empty when the symbol is not tied to a transition
	Symbol   Symbol
	Alphabet string // "input" or "stack"
	Reason   string
}

func (e *InvalidSymbolError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = fmt.Sprintf("is not in the %s alphabet", e.Alphabet)
	}
	if e.State == "" {
		return fmt.Sprintf("symbol %q %s", e.Symbol, reason)
	}
	return fmt.Sprintf("state %s: symbol %q %s", e.State, e.Symbol, reason)
}

func (e *InvalidSymbolError) Is(target error) bool { return target == ErrInvalidSymbol }

// InvalidStateError reports a state that is referenced but never declared.
type InvalidStateError struct {
	State State
	Role  string // "initial", "final", "source", "target"
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s state %s is not a declared state", e.Role, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// InvalidAcceptanceModeError reports an unknown acceptance mode.
type InvalidAcceptanceModeError struct {
	Mode AcceptanceMode
}

func (e *InvalidAcceptanceModeError) Error() string {
	return fmt.Sprintf("acceptance mode %q is not one of final_state, empty_stack, both", e.Mode)
}

func (e *InvalidAcceptanceModeError) Is(target error) bool {
	return target == ErrInvalidAcceptanceMode
}

// NondeterminismError reports a symbol transition sharing its stack top with
// a lambda transition of the same state.
type NondeterminismError struct {
	State    State
	Input    Symbol
	StackTop Symbol
}

func (e *NondeterminismError) Error() string {
	return fmt.Sprintf("state %s: transition on %q is adjacent to a lambda transition on stack top %q",
		e.State, e.Input, e.StackTop)
}

func (e *NondeterminismError) Is(target error) bool { return target == ErrNondeterministic }

// RejectionKind tells why a run stopped without accepting.
type RejectionKind int

const (
	// NoTransition means no move was defined for the current configuration.
	NoTransition RejectionKind = iota
	// NonAccepting means the run ended in a configuration that does not accept.
	NonAccepting
)

// RejectionError is the expected outcome of running a well-formed automaton
// on a string outside its language.
type RejectionError struct {
	Kind          RejectionKind
	Configuration Configuration
	// Unread is the next input symbol for NoTransition rejections with input left.
	Unread    Symbol
	HasUnread bool
}

func (e *RejectionError) Error() string {
	cfg := e.Configuration
	if e.Kind == NonAccepting {
		return fmt.Sprintf("stopped in a non-accepting configuration (%s, %s)", cfg.State, cfg.Stack)
	}
	top, ok := cfg.Stack.Peek()
	if !ok {
		return fmt.Sprintf("no transition defined for (%s, %s) with an empty stack", cfg.State, e.input())
	}
	return fmt.Sprintf("no transition defined for (%s, %s, %s)", cfg.State, e.input(), top)
}

func (e *RejectionError) input() string {
	if e.HasUnread {
		return string(e.Unread)
	}
	return "ε"
}

func (e *RejectionError) Is(target error) bool { return target == ErrRejected }

// ConsistencyError means two moves were applicable at once despite validation.
type ConsistencyError struct {
	Configuration Configuration
	Symbol        Symbol
	StackTop      Symbol
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("both a %q move and a lambda move apply at (%s, %s)",
		e.Symbol, e.Configuration.State, e.StackTop)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrInconsistent }
