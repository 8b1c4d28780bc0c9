package domain

import "strings"

// ConfigurationDiff represents the net change between two configurations.
// It is designed to be serialized to JSON for step-by-step clients.
type ConfigurationDiff struct {
	// State is set when the state changed.
	State *State `json:"state,omitempty"`

	// Consumed holds the input read between the two configurations.
	Consumed string `json:"consumed,omitempty"`

	// Popped and Pushed hold the stack symbols that left and entered the
	// stack above the unchanged part, top first.
	Popped Push `json:"popped,omitempty"`
	Pushed Push `json:"pushed,omitempty"`
}

// Diff calculates the difference between from and to.
// It returns nil when both configurations are identical.
func Diff(from, to Configuration) *ConfigurationDiff {
	diff := &ConfigurationDiff{}

	if from.State != to.State {
		next := to.State
		diff.State = &next
	}

	// Input only ever shrinks from the front.
	if len(to.Remaining) < len(from.Remaining) && strings.HasSuffix(from.Remaining, to.Remaining) {
		diff.Consumed = from.Remaining[:len(from.Remaining)-len(to.Remaining)]
	}

	diff.Popped, diff.Pushed = diffStacks(from.Stack, to.Stack)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffStacks returns the symbols above the longest common bottom segment of
// both stacks, top first. Shared nodes end the walk early.
func diffStacks(from, to Stack) (popped, pushed Push) {
	a, b := from.top, to.top
	for a.len() > b.len() {
		popped = append(popped, a.sym)
		a = a.next
	}
	for b.len() > a.len() {
		pushed = append(pushed, b.sym)
		b = b.next
	}

	var pendingA, pendingB Push
	for a != b {
		pendingA = append(pendingA, a.sym)
		pendingB = append(pendingB, b.sym)
		if a.sym != b.sym {
			popped = append(popped, pendingA...)
			pushed = append(pushed, pendingB...)
			pendingA, pendingB = pendingA[:0], pendingB[:0]
		}
		a, b = a.next, b.next
	}
	return popped, pushed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *ConfigurationDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Consumed == "" &&
		len(d.Popped) == 0 &&
		len(d.Pushed) == 0
}

// String summarises the diff, e.g. "read (, push P, goto q1".
func (d *ConfigurationDiff) String() string {
	if d == nil || d.IsEmpty() {
		return "no change"
	}
	var parts []string
	if d.Consumed != "" {
		parts = append(parts, "read "+d.Consumed)
	} else {
		parts = append(parts, "ε")
	}
	if len(d.Popped) > 0 {
		parts = append(parts, "pop "+d.Popped.String())
	}
	if len(d.Pushed) > 0 {
		parts = append(parts, "push "+d.Pushed.String())
	}
	if d.State != nil {
		parts = append(parts, "goto "+string(*d.State))
	}
	return strings.Join(parts, ", ")
}
