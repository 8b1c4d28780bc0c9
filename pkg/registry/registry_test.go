package registry_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetCompilesOnce(t *testing.T) {
	loader, err := memory.NewLoader(testutils.BalancedParens())
	require.NoError(t, err)

	var builds atomic.Int32
	reg := registry.NewRegistry(loader, registry.WithAutomatonOptions(func(name string) []pushdown.Option {
		builds.Add(1)
		return nil
	}))

	ctx := context.Background()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := reg.Get(ctx, "parens")
			assert.NoError(t, err)
			assert.True(t, a.Accepts("(())"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), builds.Load())

	_, err = reg.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
}

func TestRegistry_InvalidDefinition(t *testing.T) {
	loader, err := memory.NewLoader(testutils.Nondeterministic())
	require.NoError(t, err)
	reg := registry.NewRegistry(loader)

	_, err = reg.Get(context.Background(), "ambiguous")
	assert.ErrorIs(t, err, domain.ErrNondeterministic)
}

func TestRegistry_Register(t *testing.T) {
	reg := registry.NewRegistry(nil)
	ctx := context.Background()

	_, err := reg.Register(ctx, "bad", testutils.Nondeterministic())
	assert.ErrorIs(t, err, domain.ErrNondeterministic)

	a, err := reg.Register(ctx, "brackets", testutils.BalancedParens())
	require.NoError(t, err)
	assert.Equal(t, "brackets", a.Name())

	names, err := reg.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"brackets"}, names)

	got, err := reg.Get(ctx, "brackets")
	require.NoError(t, err)
	assert.Same(t, a, got)

	stepper, err := reg.Stepper(ctx, "brackets")
	require.NoError(t, err)
	assert.Equal(t, "brackets", stepper.Name())
}

func TestRegistry_RegisterPersistsThroughSaver(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewRegistry(file.NewLoader(dir))
	ctx := context.Background()

	_, err := reg.Register(ctx, "parens", testutils.BalancedParens())
	require.NoError(t, err)

	// A fresh registry over the same directory sees it.
	fresh := registry.NewRegistry(file.NewLoader(dir))
	a, err := fresh.Get(ctx, "parens")
	require.NoError(t, err)
	assert.True(t, a.Accepts("()()"))
}

func TestRegistry_Invalidate(t *testing.T) {
	loader, err := memory.NewLoader(testutils.BalancedParens())
	require.NoError(t, err)
	reg := registry.NewRegistry(loader)
	ctx := context.Background()

	first, err := reg.Get(ctx, "parens")
	require.NoError(t, err)

	def := testutils.ZeroNOneN(domain.AcceptByFinalState)
	def.Name = "parens"
	require.NoError(t, loader.Put(def))

	again, _ := reg.Get(ctx, "parens")
	assert.Same(t, first, again)

	reg.Invalidate("parens")
	reloaded, err := reg.Get(ctx, "parens")
	require.NoError(t, err)
	assert.True(t, reloaded.Accepts("0011"))
}

// gatedLoader holds Get until released, so a registration can land while a
// load is in flight.
type gatedLoader struct {
	*memory.Loader
	entered chan struct{}
	release chan struct{}
}

func (l *gatedLoader) Get(ctx context.Context, name string) (domain.Definition, error) {
	l.entered <- struct{}{}
	<-l.release
	return l.Loader.Get(ctx, name)
}

func TestRegistry_RegisterDuringLoad(t *testing.T) {
	inner, err := memory.NewLoader(testutils.BalancedParens())
	require.NoError(t, err)
	loader := &gatedLoader{Loader: inner, entered: make(chan struct{}), release: make(chan struct{})}
	reg := registry.NewRegistry(loader)
	ctx := context.Background()

	type result struct {
		a   *pushdown.Automaton
		err error
	}
	done := make(chan result, 1)
	go func() {
		a, err := reg.Get(ctx, "parens")
		done <- result{a, err}
	}()
	<-loader.entered

	replacement := testutils.BalancedParens()
	replacement.Description = "registered"
	_, err = reg.Register(ctx, "parens", replacement)
	require.NoError(t, err)

	close(loader.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "registered", res.a.Definition().Description)

	a, err := reg.Get(ctx, "parens")
	require.NoError(t, err)
	assert.Equal(t, "registered", a.Definition().Description)
}
