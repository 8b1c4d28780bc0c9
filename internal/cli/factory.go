package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/pkg/observability"
)

// LoadAutomaton reads the definition file at path and builds the automaton
// with standard CLI conventions: the given logger, run outcomes logged at
// info level, and an optional step limit.
func LoadAutomaton(path string, maxSteps int, logger *slog.Logger) (*pushdown.Automaton, error) {
	opts := []pushdown.Option{
		pushdown.WithLogger(logger),
		pushdown.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if maxSteps > 0 {
		opts = append(opts, pushdown.WithStepLimit(maxSteps))
	}

	a, err := pushdown.Load(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading automaton: %w", err)
	}
	return a, nil
}
