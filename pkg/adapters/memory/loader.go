package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/pushdown/pkg/domain"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu          sync.RWMutex
	definitions map[string]domain.Definition
}

// NewLoader creates a Loader holding copies of defs, keyed by their names.
func NewLoader(defs ...domain.Definition) (*Loader, error) {
	l := &Loader{definitions: make(map[string]domain.Definition, len(defs))}
	for _, def := range defs {
		if err := l.Put(def); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a definition.
func (l *Loader) Put(def domain.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("definition missing name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.definitions[def.Name] = def.Clone()
	return nil
}

// Get returns a copy of the named definition.
func (l *Loader) Get(ctx context.Context, name string) (domain.Definition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	def, ok := l.definitions[name]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return def.Clone(), nil
}

// List returns all definition names, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.definitions)), nil
}
