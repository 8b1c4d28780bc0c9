package domain

import (
	"fmt"
	"time"
)

// Configuration is a complete snapshot of a run: the current state, the
// unread suffix of the input and the stack contents.
// A run replaces its configuration at every step; it never mutates one.
type Configuration struct {
	State     State  `json:"state"`
	Remaining string `json:"remaining"`
	Stack     Stack  `json:"stack"`
}

// NewConfiguration builds the starting configuration of a run.
func NewConfiguration(initial State, input string, bottom Symbol) Configuration {
	return Configuration{
		State:     initial,
		Remaining: input,
		Stack:     NewStack(bottom),
	}
}

// Equal reports whether two configurations are identical.
func (c Configuration) Equal(other Configuration) bool {
	return c.State == other.State && c.Remaining == other.Remaining && c.Stack.Equal(other.Stack)
}

func (c Configuration) String() string {
	return fmt.Sprintf("(%s, %q, %s)", c.State, c.Remaining, c.Stack)
}

// RunStatus describes where a run (or session) stands.
type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusAccepted RunStatus = "accepted"
	StatusRejected RunStatus = "rejected"
)

// Terminal reports whether no further step can be taken.
func (s RunStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Outcome is the result of one bounded unit of work on a configuration.
type Outcome struct {
	// Configuration is the configuration after the call. It equals the input
	// configuration when Moved is false.
	Configuration Configuration `json:"configuration"`
	Moved         bool          `json:"moved"`
	Lambda        bool          `json:"lambda"`
	Status        RunStatus     `json:"status"`
}

// Session is a persisted stepwise run, advanced one transition per request.
type Session struct {
	ID            string        `json:"id"`
	Automaton     string        `json:"automaton"`
	Input         string        `json:"input"`
	Configuration Configuration `json:"configuration"`
	Steps         int           `json:"steps"`
	Status        RunStatus     `json:"status"`
	// Reason holds the rejection message once Status is rejected.
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	// Sealed carries the encrypted session when an encrypting store wrote
	// it; Input and Configuration are then left empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a running session positioned at cfg.
func NewSession(id, automaton, input string, cfg Configuration) *Session {
	return &Session{
		ID:            id,
		Automaton:     automaton,
		Input:         input,
		Configuration: cfg,
		Status:        StatusRunning,
		UpdatedAt:     time.Now().UTC(),
	}
}
