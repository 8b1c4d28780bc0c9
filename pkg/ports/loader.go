package ports

import (
	"context"

	"github.com/aretw0/pushdown/pkg/domain"
)

// DefinitionLoader defines where named automaton definitions come from.
// This allows the storage layer (files, memory) to be decoupled.
type DefinitionLoader interface {
	// Get returns the definition registered under name.
	// It returns domain.ErrAutomatonNotFound when there is none.
	Get(ctx context.Context, name string) (domain.Definition, error)

	// List returns the names of all available definitions, sorted.
	List(ctx context.Context) ([]string, error)
}

// Stepper is the part of an automaton a stepwise session needs.
// *pushdown.Automaton satisfies it.
type Stepper interface {
	Name() string
	InitialConfiguration(input string) domain.Configuration
	Advance(cfg domain.Configuration) (domain.Outcome, error)
}
