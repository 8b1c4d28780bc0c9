/*
Package pushdown is a deterministic pushdown automaton (DPDA) engine.

An automaton is built once from a Definition: states, an input alphabet, a
stack alphabet, a transition map, an initial state, an initial stack symbol,
final states and an acceptance mode. Construction validates the definition,
including the determinism rule: a state that has a lambda move on stack
symbol X may not also read input with X on top. Any number of runs may then
share the automaton concurrently.

# Transitions

A transition is keyed by (state, input symbol or lambda, stack top) and moves
to a new state, replacing the stack top with a sequence written top first:
"PZ" leaves P above Z, and the empty sequence pops.

# Usage

	a, err := pushdown.Load("parens.yaml")
	if err != nil {
		log.Fatal(err)
	}

	// Membership
	fmt.Println(a.Accepts("(())"))

	// Stepwise
	run := a.ReadInputStepwise(ctx, "(())")
	for run.Next() {
		fmt.Println(run.Configuration())
	}
	if err := run.Err(); err != nil {
		// errors.Is(err, domain.ErrRejected) for a word outside the language
	}

Definition files, sessions, the HTTP and MCP adapters and the CLI live in
the pkg/ and cmd/ trees and only use the operations exported here.
*/
package pushdown
