package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pushdown/pkg/adapters/memory"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sess := domain.NewSession("b", "parens", "()", domain.Configuration{State: "q0", Remaining: "()", Stack: domain.NewStack("Z")})
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Save(ctx, domain.NewSession("a", "parens", "", domain.Configuration{State: "q0"})))

	sess.Status = domain.StatusAccepted
	loaded, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, loaded.Status)

	loaded.Steps = 7
	again, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, again.Steps)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
