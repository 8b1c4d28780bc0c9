package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/stretchr/testify/require"
)

// BalancedParens recognises balanced parentheses by final state.
// q1 counts open parentheses with P; once only Z is left, a lambda move
// returns to the accepting state q0.
func BalancedParens() domain.Definition {
	tm := domain.TransitionMap{}
	tm.Set("q0", "(", "Z", domain.Move{To: "q1", Push: domain.ParsePush("PZ")})
	tm.Set("q1", "(", "P", domain.Move{To: "q1", Push: domain.ParsePush("PP")})
	tm.Set("q1", ")", "P", domain.Move{To: "q1", Push: domain.Push{}})
	tm.Set("q1", domain.Epsilon, "Z", domain.Move{To: "q0", Push: domain.ParsePush("Z")})

	return domain.Definition{
		Name:               "parens",
		States:             []domain.State{"q0", "q1"},
		InputSymbols:       []domain.Symbol{"(", ")"},
		StackSymbols:       []domain.Symbol{"Z", "P"},
		Transitions:        tm,
		InitialState:       "q0",
		InitialStackSymbol: "Z",
		FinalStates:        []domain.State{"q0"},
		AcceptanceMode:     domain.AcceptByFinalState,
	}
}

// ZeroNOneN recognises 0^n 1^n (n >= 1). The last 1 leaves the bottom marker
// on top, and a trailing lambda move reaches the final state q3 after the
// input is exhausted.
func ZeroNOneN(mode domain.AcceptanceMode) domain.Definition {
	tm := domain.TransitionMap{}
	tm.Set("q0", "0", "0", domain.Move{To: "q1", Push: domain.ParsePush("10")})
	tm.Set("q1", "0", "1", domain.Move{To: "q1", Push: domain.ParsePush("11")})
	tm.Set("q1", "1", "1", domain.Move{To: "q2", Push: domain.Push{}})
	tm.Set("q2", "1", "1", domain.Move{To: "q2", Push: domain.Push{}})
	tm.Set("q2", domain.Epsilon, "0", domain.Move{To: "q3", Push: domain.ParsePush("0")})

	return domain.Definition{
		Name:               "zero-n-one-n",
		States:             []domain.State{"q0", "q1", "q2", "q3"},
		InputSymbols:       []domain.Symbol{"0", "1"},
		StackSymbols:       []domain.Symbol{"0", "1"},
		Transitions:        tm,
		InitialState:       "q0",
		InitialStackSymbol: "0",
		FinalStates:        []domain.State{"q3"},
		AcceptanceMode:     mode,
	}
}

// ZeroNOneNPopping is ZeroNOneN whose trailing lambda move also pops the
// bottom marker, so it accepts by final state and by empty stack alike.
func ZeroNOneNPopping(mode domain.AcceptanceMode) domain.Definition {
	def := ZeroNOneN(mode)
	def.Name = "zero-n-one-n-popping"
	def.Transitions.Set("q2", domain.Epsilon, "0", domain.Move{To: "q3", Push: domain.Push{}})
	return def
}

// Nondeterministic has a lambda move and a '0' move sharing stack top X in q.
func Nondeterministic() domain.Definition {
	tm := domain.TransitionMap{}
	tm.Set("q", domain.Epsilon, "X", domain.Move{To: "r", Push: domain.ParsePush("X")})
	tm.Set("q", "0", "X", domain.Move{To: "q", Push: domain.ParsePush("XX")})

	return domain.Definition{
		Name:               "ambiguous",
		States:             []domain.State{"q", "r"},
		InputSymbols:       []domain.Symbol{"0"},
		StackSymbols:       []domain.Symbol{"X"},
		Transitions:        tm,
		InitialState:       "q",
		InitialStackSymbol: "X",
		FinalStates:        []domain.State{"r"},
		AcceptanceMode:     domain.AcceptByFinalState,
	}
}

// WriteFiles creates a temporary directory holding files (name -> content)
// and returns its absolute path. It fails the test immediately on error.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	absPath, err := filepath.Abs(dir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(absPath, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return absPath
}

// ParensYAML is BalancedParens written as a definition file.
const ParensYAML = `
name: parens
description: balanced parentheses
states: [q0, q1]
input_symbols: ["(", ")"]
stack_symbols: [Z, P]
initial_state: q0
initial_stack_symbol: Z
final_states: [q0]
acceptance_mode: final_state
transitions:
  q0:
    "(":
      Z: [q1, PZ]
  q1:
    "(":
      P: [q1, PP]
    ")":
      P: {to: q1, push: ""}
    "":
      Z: [q0, Z]
`
