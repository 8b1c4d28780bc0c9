package registry

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/ports"
	"golang.org/x/sync/singleflight"
)

// Saver is implemented by loaders that can persist definitions
// (file.Loader). Registered definitions are written through when present.
type Saver interface {
	Save(ctx context.Context, def domain.Definition) error
}

// Registry compiles automata on first use and caches them by name.
// Safe for concurrent use.
type Registry struct {
	loader  ports.DefinitionLoader
	options func(name string) []pushdown.Option
	logger  *slog.Logger

	mu       sync.RWMutex
	compiled map[string]*pushdown.Automaton
	// overrides hold definitions registered at runtime that the loader
	// does not (or cannot) persist.
	overrides map[string]domain.Definition
	// generation counts Register and Invalidate calls per name; a Get that
	// started under an older generation must not cache its result.
	generation map[string]uint64

	group singleflight.Group
}

// Option configures the Registry.
type Option func(*Registry)

// WithAutomatonOptions supplies construction options per automaton name,
// e.g. metrics hooks labelled with the name.
func WithAutomatonOptions(fn func(name string) []pushdown.Option) Option {
	return func(r *Registry) {
		r.options = fn
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry over loader. A nil loader serves only
// registered definitions.
func NewRegistry(loader ports.DefinitionLoader, opts ...Option) *Registry {
	r := &Registry{
		loader:    loader,
		logger:    logging.NewNop(),
		compiled:  make(map[string]*pushdown.Automaton),
		overrides:  make(map[string]domain.Definition),
		generation: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the compiled automaton called name.
func (r *Registry) Get(ctx context.Context, name string) (*pushdown.Automaton, error) {
	r.mu.RLock()
	a, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		cached, ok := r.compiled[name]
		gen := r.generation[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		def, err := r.Definition(ctx, name)
		if err != nil {
			return nil, err
		}
		a, err := r.compile(name, def)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.generation[name] != gen {
			// Registered or invalidated meanwhile; a is stale.
			if newer, ok := r.compiled[name]; ok {
				return newer, nil
			}
			return a, nil
		}
		r.compiled[name] = a
		r.logger.Debug("automaton compiled", "automaton", name, "transitions", len(a.Transitions()))
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pushdown.Automaton), nil
}

// Stepper is Get typed for session managers.
func (r *Registry) Stepper(ctx context.Context, name string) (ports.Stepper, error) {
	a, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Definition returns the raw definition called name, preferring runtime
// registrations over the loader.
func (r *Registry) Definition(ctx context.Context, name string) (domain.Definition, error) {
	r.mu.RLock()
	def, ok := r.overrides[name]
	r.mu.RUnlock()
	if ok {
		return def.Clone(), nil
	}
	if r.loader == nil {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return r.loader.Get(ctx, name)
}

// Register validates def and makes it available as name, replacing any
// previous automaton of that name. Invalid definitions change nothing.
func (r *Registry) Register(ctx context.Context, name string, def domain.Definition) (*pushdown.Automaton, error) {
	def = def.Clone()
	def.Name = name

	a, err := r.compile(name, def)
	if err != nil {
		return nil, err
	}

	if saver, ok := r.loader.(Saver); ok {
		if err := saver.Save(ctx, def); err != nil {
			return nil, fmt.Errorf("failed to persist %s: %w", name, err)
		}
	} else {
		r.mu.Lock()
		r.overrides[name] = def
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.generation[name]++
	r.compiled[name] = a
	r.mu.Unlock()
	// Later callers must not join a load that started before this call.
	r.group.Forget(name)
	r.logger.Info("automaton registered", "automaton", name)
	return a, nil
}

// Invalidate drops the cached automaton so the next Get reloads it.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	r.generation[name]++
	delete(r.compiled, name)
	r.mu.Unlock()
	r.group.Forget(name)
}

// Names lists every available automaton, sorted.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	if r.loader != nil {
		names, err := r.loader.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	r.mu.RLock()
	for n := range r.overrides {
		set[n] = struct{}{}
	}
	r.mu.RUnlock()
	return slices.Sorted(maps.Keys(set)), nil
}

func (r *Registry) compile(name string, def domain.Definition) (*pushdown.Automaton, error) {
	var opts []pushdown.Option
	if r.options != nil {
		opts = r.options(name)
	}
	a, err := pushdown.New(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton %s: %w", name, err)
	}
	return a, nil
}
