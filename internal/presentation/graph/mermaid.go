package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pushdown/pkg/domain"
)

// GraphOverlay contains run data to visualize on the diagram.
type GraphOverlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
	// Accepted colours the current state as accepting or rejecting once a
	// run is over. Nil while the run is in progress.
	Accepted *bool
}

// OverlayFromRun builds an overlay from the configurations of a run.
func OverlayFromRun(configs []domain.Configuration, accepted *bool) *GraphOverlay {
	o := &GraphOverlay{Accepted: accepted}
	for _, c := range configs {
		o.VisitedStates = append(o.VisitedStates, c.State)
	}
	if len(configs) > 0 {
		o.CurrentState = configs[len(configs)-1].State
	}
	return o
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 for def.
//
// The initial state is entered from [*]; final states lead to [*]. Rules
// sharing a source and target are merged into one edge, one "a, X / PZ"
// label per line. Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(def domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	if def.Description != "" {
		fmt.Fprintf(&sb, "    %%%% %s\n", strings.ReplaceAll(def.Description, "\n", " "))
	}

	// Declare states whose name is not a valid Mermaid identifier.
	for _, s := range def.States {
		if id := sanitizeMermaidID(string(s)); id != string(s) {
			fmt.Fprintf(&sb, "    state \"%s\" as %s\n", escapeLabel(string(s)), id)
		}
	}

	if def.InitialState != "" {
		fmt.Fprintf(&sb, "    [*] --> %s\n", sanitizeMermaidID(string(def.InitialState)))
	}

	type edge struct{ from, to domain.State }
	var order []edge
	labels := make(map[edge][]string)
	for _, r := range def.Transitions.Rules() {
		e := edge{r.From, r.To}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		labels[e] = append(labels[e], escapeLabel(r.Label()))
	}
	for _, e := range order {
		fmt.Fprintf(&sb, "    %s --> %s : %s\n",
			sanitizeMermaidID(string(e.from)),
			sanitizeMermaidID(string(e.to)),
			strings.Join(labels[e], "<br/>"),
		)
	}

	for _, f := range def.FinalStates {
		fmt.Fprintf(&sb, "    %s --> [*]\n", sanitizeMermaidID(string(f)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")
		sb.WriteString("    classDef accepted fill:#c8e6c9,stroke:#2e7d32,stroke-width:4px,color:#000\n")
		sb.WriteString("    classDef rejected fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000\n")

		visitedSet := make(map[string]bool)
		for _, s := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(s))
			if safeID == "" || visitedSet[safeID] || s == overlay.CurrentState {
				continue
			}
			visitedSet[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited\n", safeID)
		}

		if overlay.CurrentState != "" {
			class := "current"
			if overlay.Accepted != nil {
				class = "rejected"
				if *overlay.Accepted {
					class = "accepted"
				}
			}
			fmt.Fprintf(&sb, "    class %s %s\n", sanitizeMermaidID(string(overlay.CurrentState)), class)
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// escapeLabel protects characters Mermaid treats as syntax inside labels.
func escapeLabel(s string) string {
	r := strings.NewReplacer(
		"#", "#35;",
		";", "#59;",
		":", "#58;",
		"\"", "#quot;",
		"<", "#lt;",
		">", "#gt;",
	)
	return r.Replace(s)
}
