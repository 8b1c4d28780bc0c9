/*
Package domain contains the core value types of a deterministic pushdown automaton.

It defines the alphabets, the transition map, the immutable stack, the run
configuration and the error taxonomy shared by the runtime and every adapter.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Definition: The construction record (states, alphabets, transitions, acceptance mode).
  - TransitionMap: Moves keyed by (state, input symbol or Epsilon, stack top).
  - Stack: An immutable LIFO; ReplaceTop pops the top and pushes a sequence.
  - Configuration: The (state, unread input, stack) snapshot of a run.
  - Session: A persisted stepwise run.
*/
package domain
