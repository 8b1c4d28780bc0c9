package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pushdown/internal/presentation/graph"
	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/aretw0/pushdown/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	parens := testutils.BalancedParens()

	named := testutils.BalancedParens()
	named.States = append(named.States, "dead-end")

	tests := []struct {
		name     string
		def      domain.Definition
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Initial And Final Markers",
			def:  parens,
			contains: []string{
				"stateDiagram-v2\n",
				"[*] --> q0\n",
				"q0 --> [*]\n",
			},
			excludes: []string{"q1 --> [*]"},
		},
		{
			name: "Merged Edge Labels",
			def:  parens,
			contains: []string{
				"q0 --> q1 : (, Z / PZ\n",
				"q1 --> q1 : (, P / PP<br/>), P / ε\n",
				"q1 --> q0 : ε, Z / Z\n",
			},
		},
		{
			name: "ID Sanitization",
			def:  named,
			contains: []string{
				"state \"dead-end\" as dead_end\n",
			},
		},
		{
			name:    "Overlay",
			def:     parens,
			overlay: &graph.GraphOverlay{VisitedStates: []domain.State{"q0", "q1", "q0"}, CurrentState: "q1"},
			contains: []string{
				"classDef visited",
				"class q0 visited\n",
				"class q1 current\n",
			},
			excludes: []string{"class q1 visited"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.def, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\n---\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("output should not contain %q\n---\n%s", unwanted, got)
				}
			}
			if strings.Count(got, "class q0 visited") > 1 {
				t.Errorf("visited states should be deduplicated\n%s", got)
			}
		})
	}
}

func TestOverlayFromRun(t *testing.T) {
	accepted := true
	configs := []domain.Configuration{
		{State: "q0"}, {State: "q1"}, {State: "q0"},
	}
	o := graph.OverlayFromRun(configs, &accepted)
	if o.CurrentState != "q0" || len(o.VisitedStates) != 3 {
		t.Fatalf("unexpected overlay %+v", o)
	}

	out := graph.GenerateMermaid(testutils.BalancedParens(), o)
	if !strings.Contains(out, "class q0 accepted\n") {
		t.Errorf("expected accepted class on final state\n%s", out)
	}
}
