package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart EventType = "run_start"
	EventStep     EventType = "step"
	EventAccept   EventType = "accept"
	EventReject   EventType = "reject"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Automaton string    `json:"automaton,omitempty"`
}

// RunEvent marks the start or end of a run.
type RunEvent struct {
	EventBase
	Input         string        `json:"input"`
	Configuration Configuration `json:"configuration"`
	Steps         int           `json:"steps"`
	Err           error         `json:"-"`
}

// StepEvent describes one applied transition.
type StepEvent struct {
	EventBase
	From   Configuration `json:"from"`
	To     Configuration `json:"to"`
	Lambda bool          `json:"lambda"`
	Step   int           `json:"step"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnStep     func(context.Context, *StepEvent)
	OnAccept   func(context.Context, *RunEvent)
	OnReject   func(context.Context, *RunEvent)
}

// NewEvent stamps a base event.
func NewEvent(typ EventType, automaton string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: typ, Automaton: automaton}
}
