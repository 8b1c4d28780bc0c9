package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/pushdown/internal/testutils"
	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/adapters/redis"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/registry"
	"github.com/aretw0/pushdown/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, sess)
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	loader, err := memory.NewLoader(
		testutils.BalancedParens(),
		testutils.ZeroNOneN(domain.AcceptByFinalState),
	)
	require.NoError(t, err)
	return registry.NewRegistry(loader)
}

func TestManager_StepToAcceptance(t *testing.T) {
	reg := newRegistry(t)
	mgr := session.NewManager(memory.NewStore(), reg.Stepper)
	ctx := context.Background()

	s, err := mgr.Start(ctx, "", "zero-n-one-n", "01")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, domain.StatusRunning, s.Status)
	assert.Equal(t, "01", s.Configuration.Remaining)

	var states []domain.State
	for {
		s, _, err = mgr.Step(ctx, s.ID)
		require.NoError(t, err)
		states = append(states, s.Configuration.State)
		if s.Status.Terminal() {
			break
		}
	}
	// The trailing lambda move is taken after the input is exhausted.
	assert.Equal(t, []domain.State{"q1", "q2", "q3"}, states)
	assert.Equal(t, domain.StatusAccepted, s.Status)
	assert.Equal(t, 3, s.Steps)

	_, _, err = mgr.Step(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionFinished)

	loaded, err := mgr.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, loaded.Status)
}

func TestManager_StepToRejection(t *testing.T) {
	reg := newRegistry(t)
	mgr := session.NewManager(memory.NewStore(), reg.Stepper)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "bad", "parens", ")")
	require.NoError(t, err)

	s, out, err := mgr.Step(ctx, "bad")
	require.NoError(t, err, "a rejection is not an error")
	assert.False(t, out.Moved)
	assert.Equal(t, domain.StatusRejected, s.Status)
	assert.Contains(t, s.Reason, "no transition")
}

func TestManager_StartErrors(t *testing.T) {
	reg := newRegistry(t)
	mgr := session.NewManager(memory.NewStore(), reg.Stepper)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "s1", "missing", "")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	_, err = mgr.Start(ctx, "s1", "parens", "()")
	require.NoError(t, err)
	_, err = mgr.Start(ctx, "s1", "parens", "()")
	assert.ErrorIs(t, err, session.ErrSessionExists)

	_, _, err = mgr.Step(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_StepLimit(t *testing.T) {
	reg := newRegistry(t)
	mgr := session.NewManager(memory.NewStore(), reg.Stepper, session.WithStepLimit(1))
	ctx := context.Background()

	_, err := mgr.Start(ctx, "s", "parens", "(())")
	require.NoError(t, err)

	_, _, err = mgr.Step(ctx, "s")
	require.NoError(t, err)

	s, _, err := mgr.Step(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	require.NotNil(t, s)
	assert.Equal(t, domain.StatusRejected, s.Status)
}

func TestManager_ConcurrentSteps(t *testing.T) {
	reg := newRegistry(t)
	mgr := session.NewManager(SlowStore{memory.NewStore()}, reg.Stepper)
	ctx := context.Background()

	_, err := mgr.Start(ctx, "race-test", "parens", "((((()))))")
	require.NoError(t, err)

	// Read-Modify-Write without locking would lose steps.
	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Step(ctx, "race-test")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := mgr.Load(ctx, "race-test")
	require.NoError(t, err)
	assert.Equal(t, 6, s.Steps)
	assert.Equal(t, "))))", s.Configuration.Remaining)
}

func TestManager_DistributedLocker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	reg := newRegistry(t)
	store := redis.NewFromClient(client)
	mgr := session.NewManager(store, reg.Stepper,
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(time.Second),
	)
	ctx := context.Background()

	_, err = mgr.Start(ctx, "dist", "parens", "()")
	require.NoError(t, err)
	s, _, err := mgr.Step(ctx, "dist")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Steps)

	assert.False(t, mr.Exists("test:lock:dist"), "lock must be released after the step")

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dist"}, ids)

	require.NoError(t, mgr.Delete(ctx, "dist"))
	_, err = mgr.Load(ctx, "dist")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
