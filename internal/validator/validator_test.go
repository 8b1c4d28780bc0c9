package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/aretw0/pushdown/pkg/domain"
)

func TestValidate(t *testing.T) {
	// Scenario A: well-formed automata
	for _, def := range []domain.Definition{
		testutils.BalancedParens(),
		testutils.ZeroNOneN(domain.AcceptByFinalState),
		testutils.ZeroNOneNPopping(domain.AcceptByEmptyStack),
	} {
		if err := Validate(def); err != nil {
			t.Errorf("Scenario A (%s) failed: %v", def.Name, err)
		}
	}

	// Scenario B: lambda move adjacent to a symbol move on the same stack top
	err := Validate(testutils.Nondeterministic())
	if err == nil {
		t.Fatal("Scenario B (Nondeterministic) should have failed, but got nil")
	}
	var nd *domain.NondeterminismError
	if !errors.As(err, &nd) {
		t.Fatalf("expected NondeterminismError, got: %v", err)
	}
	if nd.State != "q" || nd.Input != "0" || nd.StackTop != "X" {
		t.Errorf("unexpected error details: %+v", nd)
	}
	if !errors.Is(err, domain.ErrNondeterministic) {
		t.Errorf("expected errors.Is(err, ErrNondeterministic)")
	}
}

func TestCheckDeterminism_DifferentStackTops(t *testing.T) {
	// Lambda on Z and '(' on P in the same state do not conflict.
	tm := domain.TransitionMap{}
	tm.Set("q", domain.Epsilon, "Z", domain.Move{To: "q"})
	tm.Set("q", "(", "P", domain.Move{To: "q"})
	tm.Set("q", ")", "P", domain.Move{To: "q"})

	if errs := CheckDeterminism(tm); len(errs) != 0 {
		t.Errorf("expected no conflicts, got %v", errs)
	}

	// A conflict in one state does not leak into another.
	tm.Set("r", "(", "Z", domain.Move{To: "q"})
	if errs := CheckDeterminism(tm); len(errs) != 0 {
		t.Errorf("expected no conflicts across states, got %v", errs)
	}

	tm.Set("q", ")", "Z", domain.Move{To: "r"})
	errs := CheckDeterminism(tm)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one conflict, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "adjacent to a lambda transition") {
		t.Errorf("unexpected message: %v", errs[0])
	}
}

func TestCheckTransitions_InvalidSymbols(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Definition)
		wantErr error
		wantMsg string
	}{
		{
			name: "input symbol outside alphabet",
			mutate: func(d *domain.Definition) {
				d.Transitions.Set("q0", "[", "Z", domain.Move{To: "q1", Push: domain.ParsePush("PZ")})
			},
			wantErr: domain.ErrInvalidSymbol,
			wantMsg: `state q0: symbol "[" is not in the input alphabet`,
		},
		{
			name: "stack top outside alphabet",
			mutate: func(d *domain.Definition) {
				d.Transitions.Set("q1", ")", "Q", domain.Move{To: "q1"})
			},
			wantErr: domain.ErrInvalidSymbol,
			wantMsg: `state q1: symbol "Q" is not in the stack alphabet`,
		},
		{
			name: "pushed symbol outside alphabet",
			mutate: func(d *domain.Definition) {
				d.Transitions.Set("q0", "(", "Z", domain.Move{To: "q1", Push: domain.ParsePush("QZ")})
			},
			wantErr: domain.ErrInvalidSymbol,
			wantMsg: `symbol "Q"`,
		},
		{
			name: "undeclared target",
			mutate: func(d *domain.Definition) {
				d.Transitions.Set("q0", "(", "Z", domain.Move{To: "ghost"})
			},
			wantErr: domain.ErrInvalidState,
			wantMsg: "target state ghost",
		},
		{
			name: "undeclared source",
			mutate: func(d *domain.Definition) {
				d.Transitions.Set("ghost", "(", "Z", domain.Move{To: "q0"})
			},
			wantErr: domain.ErrInvalidState,
			wantMsg: "source state ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testutils.BalancedParens()
			tt.mutate(&def)

			err := Validate(def)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCheckDefinition(t *testing.T) {
	def := testutils.BalancedParens()
	def.InitialState = "start"
	def.InitialStackSymbol = "#"
	def.FinalStates = append(def.FinalStates, "done")
	def.InputSymbols = append(def.InputSymbols, "ab")
	def.AcceptanceMode = "eventually"

	errs := CheckDefinition(def)
	if len(errs) != 5 {
		t.Fatalf("expected 5 problems, got %d: %v", len(errs), errs)
	}

	err := errors.Join(errs...)
	for _, target := range []error{domain.ErrInvalidAcceptanceMode, domain.ErrInvalidSymbol, domain.ErrInvalidState} {
		if !errors.Is(err, target) {
			t.Errorf("expected %v among %v", target, err)
		}
	}
}

func TestUnreachable(t *testing.T) {
	def := testutils.ZeroNOneN(domain.AcceptByFinalState)
	if got := Unreachable(def); len(got) != 0 {
		t.Errorf("expected every state reachable, got %v", got)
	}

	def.States = append(def.States, "island")
	got := Unreachable(def)
	if len(got) != 1 || got[0] != "island" {
		t.Errorf("expected [island], got %v", got)
	}
}
