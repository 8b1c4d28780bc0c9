/*
Package dsl provides a fluent Go builder for pushdown automaton definitions.

It is the programmatic counterpart of YAML and JSON definition files, useful
for tests, generated automata and IDE-checked construction.

Example usage:

	a, err := dsl.New("parens").
		States("q0", "q1").
		InputSymbols("()").
		StackSymbols("ZP").
		Initial("q0", "Z").
		Final("q0").
		Mode(domain.AcceptByFinalState).
		On("q0", "(", "Z").Go("q1").Push("PZ").
		On("q1", "(", "P").Go("q1").Push("PP").
		On("q1", ")", "P").Go("q1").
		Lambda("q1", "Z").Go("q0").Keep().
		Done().
		Compile()
*/
package dsl
