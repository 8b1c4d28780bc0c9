package pushdown_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/domain"
)

func parensDefinition() domain.Definition {
	tm := domain.TransitionMap{}
	tm.Set("q0", "(", "Z", domain.Move{To: "q1", Push: domain.ParsePush("PZ")})
	tm.Set("q1", "(", "P", domain.Move{To: "q1", Push: domain.ParsePush("PP")})
	tm.Set("q1", ")", "P", domain.Move{To: "q1"})
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

// ExampleNew builds the balanced-parentheses automaton and tests a few words.
func ExampleNew() {
	a, err := pushdown.New(parensDefinition())
	if err != nil {
		log.Fatal(err)
	}

	for _, input := range []string{"(())", "(()", ")("} {
		fmt.Printf("%s: %v\n", input, a.Accepts(input))
	}
	// Output:
	// (()): true
	// ((): false
	// )(: false
}

// ExampleAutomaton_ReadInputStepwise walks a run one configuration at a time.
func ExampleAutomaton_ReadInputStepwise() {
	a, err := pushdown.New(parensDefinition())
	if err != nil {
		log.Fatal(err)
	}

	run := a.ReadInputStepwise(context.Background(), "(())")
	for run.Next() {
		fmt.Println(run.Configuration())
	}
	fmt.Println("accepted:", run.Err() == nil && run.Accepted())
	// Output:
	// (q0, "(())", Z)
	// (q1, "())", PZ)
	// (q1, "))", PPZ)
	// (q1, ")", PZ)
	// (q1, "", Z)
	// (q0, "", Z)
	// accepted: true
}
