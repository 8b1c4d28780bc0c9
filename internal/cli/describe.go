package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/domain"
)

// Describe prints the components of a and its transition table. States no
// transition can reach are reported as a warning; they do not make the
// automaton invalid.
func Describe(w io.Writer, a *pushdown.Automaton) {
	def := a.Definition()
	fmt.Fprintf(w, "name:            %s\n", a.Name())
	if def.Description != "" {
		fmt.Fprintf(w, "description:     %s\n", def.Description)
	}
	fmt.Fprintf(w, "states:          %s\n", join(a.States()))
	fmt.Fprintf(w, "input symbols:   %s\n", join(a.InputSymbols()))
	fmt.Fprintf(w, "stack symbols:   %s\n", join(a.StackSymbols()))
	fmt.Fprintf(w, "initial:         %s, %s\n", a.InitialState(), a.InitialStackSymbol())
	fmt.Fprintf(w, "final states:    %s\n", join(a.FinalStates()))
	fmt.Fprintf(w, "acceptance mode: %s\n", a.AcceptanceMode())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tINPUT\tTOP\tTO\tPUSH")
	for _, r := range a.Transitions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.From, r.Input.Display(), r.StackTop.Display(), r.To, r.Push)
	}
	tw.Flush()

	if unreachable := a.Unreachable(); len(unreachable) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "warning: unreachable states: %s\n", join(unreachable))
	}
}

func join[T domain.State | domain.Symbol](items []T) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
