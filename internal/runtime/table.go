package runtime

import "github.com/aretw0/pushdown/pkg/domain"

// Table is the read-only transition relation of an automaton.
type Table struct {
	moves domain.TransitionMap
}

// NewTable builds a table over a private copy of tm.
func NewTable(tm domain.TransitionMap) *Table {
	moves := tm.Clone()
	if moves == nil {
		moves = domain.TransitionMap{}
	}
	return &Table{moves: moves}
}

// Lookup returns the move keyed by (state, input, stackTop).
// A missing transition is a normal outcome, reported by ok == false.
func (t *Table) Lookup(state domain.State, input, stackTop domain.Symbol) (domain.Move, bool) {
	mv, ok := t.moves[state][input][stackTop]
	return mv, ok
}

// HasLambda reports whether a lambda move exists for (state, stackTop).
func (t *Table) HasLambda(state domain.State, stackTop domain.Symbol) bool {
	_, ok := t.Lookup(state, domain.Epsilon, stackTop)
	return ok
}

// Rules lists every transition in a stable order.
func (t *Table) Rules() []domain.Rule {
	return t.moves.Rules()
}

// Len returns the number of transitions.
func (t *Table) Len() int {
	n := 0
	for _, byInput := range t.moves {
		for _, byStack := range byInput {
			n += len(byStack)
		}
	}
	return n
}
