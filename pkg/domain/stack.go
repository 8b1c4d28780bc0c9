package domain

import (
	"encoding/json"
	"strings"
)

// Stack is an immutable LIFO of stack symbols. Every operation that changes
// the contents returns a new Stack; the receiver is never modified, so a Stack
// may be shared freely between configurations and goroutines.
//
// Stacks derived from one another share their lower nodes, so ReplaceTop
// costs only the symbols it pushes.
type Stack struct {
	top *node
}

type node struct {
	sym  Symbol
	next *node
	size int
}

func (n *node) len() int {
	if n == nil {
		return 0
	}
	return n.size
}

// NewStack creates a stack holding symbols, bottom first.
func NewStack(symbols ...Symbol) Stack {
	return Stack{}.Push(symbols...)
}

// Len returns the number of symbols on the stack.
func (s Stack) Len() int { return s.top.len() }

// IsEmpty reports whether the stack has been popped empty.
func (s Stack) IsEmpty() bool { return s.top == nil }

// Top returns the most recently pushed symbol.
func (s Stack) Top() (Symbol, error) {
	top, ok := s.Peek()
	if !ok {
		return Epsilon, ErrEmptyStack
	}
	return top, nil
}

// Peek returns the top symbol and whether the stack was non-empty.
func (s Stack) Peek() (Symbol, bool) {
	if s.top == nil {
		return Epsilon, false
	}
	return s.top.sym, true
}

// ReplaceTop removes the top symbol and pushes seq in order, so the last
// element of seq becomes the new top. An empty seq is a pure pop.
func (s Stack) ReplaceTop(seq ...Symbol) (Stack, error) {
	if s.top == nil {
		return Stack{}, ErrEmptyStack
	}
	return Stack{top: s.top.next}.Push(seq...), nil
}

// Push returns a new stack with seq pushed in order on top of s.
func (s Stack) Push(seq ...Symbol) Stack {
	top := s.top
	for _, sym := range seq {
		top = &node{sym: sym, next: top, size: top.len() + 1}
	}
	return Stack{top: top}
}

// Pop returns the stack without its top symbol.
func (s Stack) Pop() (Stack, error) {
	return s.ReplaceTop()
}

// Symbols returns a copy of the contents, bottom first.
func (s Stack) Symbols() []Symbol {
	out := make([]Symbol, s.Len())
	i := len(out) - 1
	for n := s.top; n != nil; n = n.next {
		out[i] = n.sym
		i--
	}
	return out
}

// Equal reports whether both stacks hold the same symbols in the same order.
func (s Stack) Equal(other Stack) bool {
	a, b := s.top, other.top
	if a.len() != b.len() {
		return false
	}
	for a != b {
		if a.sym != b.sym {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

// String renders the stack top first, the way replacements are written.
func (s Stack) String() string {
	var sb strings.Builder
	for n := s.top; n != nil; n = n.next {
		sb.WriteString(string(n.sym))
	}
	return sb.String()
}

// MarshalJSON encodes the stack as an array, bottom first.
func (s Stack) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Symbols())
}

// UnmarshalJSON decodes an array written by MarshalJSON.
func (s *Stack) UnmarshalJSON(data []byte) error {
	var items []Symbol
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewStack(items...)
	return nil
}
