package domain

import (
	"strings"
	"unicode/utf8"
)

// State identifies an automaton state. It carries no internal structure.
type State string

// Symbol is a single character of the input or stack alphabet.
type Symbol string

// Epsilon is the empty input symbol. A transition keyed on Epsilon consumes no input.
const Epsilon Symbol = ""

// IsEpsilon reports whether s is the empty symbol.
func (s Symbol) IsEpsilon() bool { return s == Epsilon }

// Valid reports whether s is exactly one character.
func (s Symbol) Valid() bool {
	return utf8.RuneCountInString(string(s)) == 1
}

// Display renders the symbol for humans, showing ε for the empty symbol.
func (s Symbol) Display() string {
	if s == Epsilon {
		return "ε"
	}
	return string(s)
}

// SplitSymbols breaks a string into one Symbol per character.
func SplitSymbols(s string) []Symbol {
	out := make([]Symbol, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, Symbol(string(r)))
	}
	return out
}

// FirstSymbol returns the first character of input and the rest of it.
// ok is false when input is empty.
func FirstSymbol(input string) (first Symbol, rest string, ok bool) {
	if input == "" {
		return Epsilon, "", false
	}
	r, size := utf8.DecodeRuneInString(input)
	return Symbol(string(r)), input[size:], true
}

// Push is the replacement written for the stack top, in textual order:
// the first symbol becomes the new top ("PZ" leaves P above Z).
// An empty Push pops the top.
type Push []Symbol

// ParsePush converts a textual replacement like "PZ" into a Push.
func ParsePush(s string) Push {
	return Push(SplitSymbols(s))
}

// PushOrder returns the symbols in the order they are pushed, so that the
// last element ends up on top.
func (p Push) PushOrder() []Symbol {
	out := make([]Symbol, len(p))
	for i, s := range p {
		out[len(p)-1-i] = s
	}
	return out
}

// String joins the symbols in textual order. A pop renders as ε.
func (p Push) String() string {
	if len(p) == 0 {
		return "ε"
	}
	var sb strings.Builder
	for _, s := range p {
		sb.WriteString(string(s))
	}
	return sb.String()
}
